// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cnotch/avcconf/config"
	"github.com/cnotch/avcconf/network/source"
	"github.com/cnotch/avcconf/utils"
	"github.com/cnotch/xlog"
)

func main() {
	// 初始化配置
	if err := config.InitConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.Name, err)
		os.Exit(2)
	}

	if err := run(context.Background(), xlog.L()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.Name, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *xlog.Logger) error {
	input := config.Input()
	if input == "" {
		return errors.New("no input, use -input or pass a path")
	}

	src, err := source.Open(ctx, input, config.NetTimeout(), logger)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := source.ReadAll(src)
	if err != nil {
		return err
	}
	logger.Debugf("read %d bytes from %s", len(data), input)

	rep, annexb, err := inspect(data, config.Framing(), config.NalLengthSize())
	if err != nil {
		return err
	}
	rep.Input = input

	if config.JSON() {
		err = utils.EncodeJSON(os.Stdout, rep)
	} else {
		err = rep.print(os.Stdout)
	}
	if err != nil {
		return err
	}

	if path := config.Report(); path != "" {
		if err := utils.EncodeJSONFile(path, rep); err != nil {
			return err
		}
	}

	return writeOutput(config.OutputFormat(), config.Output(), config.OutputNalLengthSize(),
		rep, annexb, logger)
}
