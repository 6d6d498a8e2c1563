// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewRegionFlag constructs a cli.StringFlag for the "region" flag, optionally
// namespaced to a command and config file. params[1] is the config file. An
// empty value defers to the SDK's own resolution chain (AWS_REGION, profile).
func NewRegionFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "region",
		Usage: "AWS region to use for all commands. Overrides the profile",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLARIFYCTL_REGION"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewProfileFlag constructs a cli.StringFlag for the "profile" flag,
// optionally namespaced to a command and config file. params[1] is the
// config file.
func NewProfileFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "profile",
		Usage: "AWS shared config profile to use for all commands",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLARIFYCTL_PROFILE"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewEndpointFlag constructs a cli.StringFlag for the "endpoint" flag,
// optionally namespaced to a command and config file. params[1] is the config
// file. When left empty, commands fall back to the most recently created
// endpoint in the account.
func NewEndpointFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "endpoint",
		Aliases: []string{"e"},
		Usage:   "endpoint to use for query. Overrides latest-endpoint discovery",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLARIFYCTL_ENDPOINT"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewBucketFlag constructs a cli.StringFlag for the "bucket" flag, optionally
// namespaced to a command and config file. params[1] is the config file. When
// left empty, commands fall back to the account's sagemaker-<region>-<account>
// bucket.
func NewBucketFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "bucket",
		Aliases: []string{"b"},
		Usage:   "S3 bucket for datasets and job output. Overrides the default",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLARIFYCTL_BUCKET"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewPrefixFlag constructs a cli.StringFlag for the "prefix" flag, optionally
// namespaced to a command and config file. params[1] is the config file.
func NewPrefixFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "prefix",
		Usage: "S3 key prefix under the bucket",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLARIFYCTL_PREFIX"),
		),
		Value: "clarifyctl",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given key exists in cfg.Source.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
