// Command crimp compresses and decompresses files through the hardening
// layer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/files"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/log"
	"github.com/crimp-io/crimp/stream"
)

var version = "dev"

var (
	flagConfig string
	flagMode   string
	flagCodec  string
	flagLevel  int
	flagOut    string
)

func main() {
	root := &cobra.Command{
		Use:           "crimp",
		Short:         "Hardened parallel compression front end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (yaml)")
	root.PersistentFlags().StringVar(&flagMode, "mode", "", "operating mode: performance, balanced, security")
	root.PersistentFlags().StringVar(&flagCodec, "codec", "gzip", "codec: gzip, deflate, brotli, zstd, lz4, s2")
	root.PersistentFlags().IntVar(&flagLevel, "level", codec.DefaultLevel, "compression level (0-9)")

	compressCmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Compress a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], format.OpCompress)
		},
	}
	compressCmd.Flags().StringVarP(&flagOut, "output", "o", "", "output file (default <file>.crimp)")

	decompressCmd := &cobra.Command{
		Use:   "decompress <file>",
		Short: "Decompress a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], format.OpDecompress)
		},
	}
	decompressCmd.Flags().StringVarP(&flagOut, "output", "o", "", "output file (default <file>.out)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("crimp", version)
		},
	}

	root.AddCommand(compressCmd, decompressCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crimp:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if flagConfig != "" {
		cfg, err = config.FromYAML(flagConfig)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	if flagMode != "" {
		cfg.ModeName = flagMode
		cfg.Mode = format.ParseMode(flagMode)
	}

	return cfg, nil
}

func run(src string, op format.Operation) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := codec.Options{
		Type:       format.ParseCodecType(flagCodec),
		Level:      flagLevel,
		MemLevel:   codec.DefaultMemLevel,
		WindowBits: codec.DefaultWindowBits,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	g, err := stream.New(cfg, opts, nil, log.New("cli"))
	if err != nil {
		return err
	}

	dst := flagOut
	if dst == "" {
		if op == format.OpCompress {
			dst = src + ".crimp"
		} else {
			dst = src + ".out"
		}
	}

	if op == format.OpCompress {
		return files.CompressFile(g, src, dst)
	}

	return files.DecompressFile(g, src, dst)
}
