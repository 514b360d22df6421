// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// config 命令行配置
type config struct {
	Input               string    `json:"input"`                  // 输入文件路径或 http(s) URL
	Framing             string    `json:"framing"`                // 输入格式 auto|annexb|avcc|avc
	NalLengthSize       int       `json:"nal_length_size"`        // 输入为 AVC 样本时的长度前缀字节数
	Output              string    `json:"output,omitempty"`       // 转换输出文件
	OutputFormat        string    `json:"output_format"`          // none|annexb|avc|avcc|flv
	OutputNalLengthSize int       `json:"output_nal_length_size"` // 输出的长度前缀字节数
	JSON                bool      `json:"json"`                   // 以 JSON 输出报告
	Report              string    `json:"report,omitempty"`       // 报告另存为 JSON 文件
	Timeout             int       `json:"timeout"`                // HTTP 超时（秒）
	Log                 LogConfig `json:"log"`                    // 日志配置
}

func (c *config) initFlags() {
	flag.StringVar(&c.Input, "input", "", "Set the input file or http(s) url")
	flag.StringVar(&c.Framing, "framing", "auto",
		"Set the input framing: auto, annexb, avcc or avc")
	flag.IntVar(&c.NalLengthSize, "nal-length-size", 0,
		"Set the NAL length size (1, 2 or 4) of an AVC sample input")
	flag.StringVar(&c.Output, "output", "", "Set the file to write converted output to")
	flag.StringVar(&c.OutputFormat, "output-format", "none",
		"Set the output format: none, annexb, avc, avcc or flv")
	flag.IntVar(&c.OutputNalLengthSize, "output-nal-length-size", 4,
		"Set the NAL length size (1, 2 or 4) of avc and avcc output")
	flag.BoolVar(&c.JSON, "json", false, "Determines if the report is printed as JSON")
	flag.StringVar(&c.Report, "report", "", "Set the file to save the JSON report to")
	flag.IntVar(&c.Timeout, "timeout", 30, "Set the http timeout in seconds")

	// 初始化日志配置
	c.Log.initFlags()
}
