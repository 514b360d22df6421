// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnotch/avcconf/av/codec"
	cfg "github.com/cnotch/loader"
)

// 程序名
const (
	Vendor  = "CAOHONGJU"
	Name    = "avcconf"
	Version = "V1.0.0"
)

// 输出格式
const (
	OutputNone   = "none"
	OutputAnnexB = "annexb"
	OutputAVC    = "avc"
	OutputAVCC   = "avcc"
	OutputFLV    = "flv"
)

var globalC *config

// InitConfig 依次从配置文件、环境变量和命令行加载配置并初始化日志。
// 第一个非 flag 参数视为输入。
func InitConfig() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	configPath := filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags()

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		return err
	}

	if flag.NArg() > 0 {
		globalC.Input = flag.Arg(0)
	}

	// 初始化日志
	return globalC.Log.initLogger()
}

// Input 输入文件或 URL
func Input() string {
	if globalC == nil {
		return ""
	}
	return globalC.Input
}

// Framing 输入格式，无法识别时为 FramingUnknown（自动探测）
func Framing() codec.Framing {
	var f codec.Framing
	if globalC == nil {
		return f
	}
	if err := f.UnmarshalText([]byte(globalC.Framing)); err != nil {
		return codec.FramingUnknown
	}
	return f
}

// NalLengthSize 输入 AVC 样本的长度前缀字节数，0 表示输入不是样本
func NalLengthSize() int {
	if globalC == nil {
		return 0
	}
	return globalC.NalLengthSize
}

// Output 转换输出文件
func Output() string {
	if globalC == nil {
		return ""
	}
	return globalC.Output
}

// OutputFormat 输出格式
func OutputFormat() string {
	if globalC == nil || globalC.OutputFormat == "" {
		return OutputNone
	}
	return strings.ToLower(globalC.OutputFormat)
}

// OutputNalLengthSize 输出的长度前缀字节数
func OutputNalLengthSize() int {
	if globalC == nil || globalC.OutputNalLengthSize == 0 {
		return 4
	}
	return globalC.OutputNalLengthSize
}

// JSON 是否以 JSON 输出报告
func JSON() bool {
	if globalC == nil {
		return false
	}
	return globalC.JSON
}

// Report 报告文件
func Report() string {
	if globalC == nil {
		return ""
	}
	return globalC.Report
}

// NetTimeout 返回 HTTP 超时设置
func NetTimeout() time.Duration {
	if globalC == nil || globalC.Timeout <= 0 {
		return time.Second * 30
	}
	return time.Second * time.Duration(globalC.Timeout)
}
