// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scan

import (
	"strings"
	"unicode"
)

// 预定义扫描器
var (
	// 逗号分割
	Comma = Scanner{Delim: ",", Trim: unicode.IsSpace}
	// 分号分割
	Semicolon = Scanner{Delim: ";", Trim: unicode.IsSpace}
	// K=V，值两端的引号会被去除
	EqualPair = Scanner{Delim: "=", Trim: func(r rune) bool {
		return unicode.IsSpace(r) || r == '"'
	}}
)

// Scanner 按分隔符切分字串
type Scanner struct {
	Delim string
	Trim  func(r rune) bool
}

func (s Scanner) trim(str string) string {
	if s.Trim == nil {
		return str
	}
	return strings.TrimFunc(str, s.Trim)
}

// Split 在第一个分隔符处切分；found 为 false 时 head 为整个字串
func (s Scanner) Split(str string) (head, tail string, found bool) {
	i := strings.Index(str, s.Delim)
	if i < 0 {
		return s.trim(str), "", false
	}
	return s.trim(str[:i]), s.trim(str[i+len(s.Delim):]), true
}

// Tokens 返回所有非空片段
func (s Scanner) Tokens(str string) []string {
	var tokens []string
	for more := true; more; {
		var token string
		token, str, more = s.Split(str)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Params 解析 `k1=v1;k2=v2` 形式的参数列表，键转为小写。
// 没有等号的片段以空值保存。
func Params(str string) map[string]string {
	params := make(map[string]string)
	for _, token := range Semicolon.Tokens(str) {
		k, v, _ := EqualPair.Split(token)
		params[strings.ToLower(k)] = v
	}
	return params
}
