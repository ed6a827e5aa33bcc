// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the Lucent restoration CLI.
package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucent-ml/lucent/autodiff"
	"github.com/lucent-ml/lucent/backend/cpu"
	"github.com/lucent-ml/lucent/config"
	"github.com/lucent-ml/lucent/nn"
	"github.com/lucent-ml/lucent/restorer"
	"github.com/lucent-ml/lucent/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lucent",
		Short:         "Lucent image restoration toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newRestoreCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lucent %s\n", version)
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var (
		configPath     string
		checkpointPath string
		outDir         string
	)

	cmd := &cobra.Command{
		Use:   "restore [flags] IMAGE...",
		Short: "Upscale images with a configured restorer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backend := autodiff.New(cpu.New())
			r, err := config.Build(cfg, backend)
			if err != nil {
				return err
			}
			if checkpointPath != "" {
				if err := nn.Load(checkpointPath, "generator", r.Generator(), backend); err != nil {
					return err
				}
			}

			for _, path := range args {
				lq, err := loadImage(path, backend)
				if err != nil {
					return err
				}
				batch := restorer.DataBatch[*autodiff.Backend[*cpu.Backend]]{
					LQ:   lq,
					Meta: []restorer.SampleMeta{{LQPath: path}},
				}
				out, err := r.ForwardTest(batch, &restorer.TestOptions{
					SaveImage: true,
					SavePath:  outDir,
				})
				if err != nil {
					return err
				}
				shape := out.Output.Shape()
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %dx%d (x%d)\n",
					path, shape[3], shape[2], r.Generator().UpscaleFactor())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "restorer configuration file")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "generator checkpoint to load")
	cmd.Flags().StringVarP(&outDir, "out", "o", "results", "output directory")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// loadImage decodes a PNG or JPEG file into a [1, 3, H, W] float32
// tensor with values in [0, 1].
func loadImage[B tensor.Backend](path string, backend B) (*tensor.Tensor[float32, B], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, 3*h*w)
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*w + x
			data[i] = float32(cr) / 0xffff
			data[plane+i] = float32(cg) / 0xffff
			data[2*plane+i] = float32(cb) / 0xffff
		}
	}
	return tensor.FromSlice(data, tensor.Shape{1, 3, h, w}, backend)
}
