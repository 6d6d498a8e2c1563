// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/meta"
)

const bashCompletionScript = `# bash completion for clarifyctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_clarifyctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "eq mq pq cq sample send bias explain report down completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
  local creds="--profile --region"

    case "$cmd" in
    eq|mq|pq)
      local opts="$common $creds --schema"
            ;;
        cq)
      local opts="$common $creds --schema --capture-uri --dump --endpoint -e --interval --objects --wait"
            ;;
        sample)
      local opts="$common $creds --schema --blocks --bucket -b --label --out --prefix --upload -u"
            ;;
        send)
      local opts="$common $creds --schema --endpoint -e --file --interval --no-header --no-wait --sleep --timeout"
            ;;
        bias)
      local opts="$common $creds --schema --bucket -b --dataset --dataset-uri --dry-run --endpoint -e --facet --facet-values --headers --instance-count --instance-type --interval --label --label-values --max-runtime --no-wait --prefix --role --threshold --timeout --volume"
            ;;
        explain)
      local opts="$common $creds --schema --agg --baseline --bucket -b --dataset --dataset-uri --dry-run --endpoint -e --headers --instance-count --instance-type --interval --label --max-runtime --no-wait --num-samples --prefix --role --timeout --volume"
            ;;
        report)
      local opts="$common $creds --schema --diff --job -j"
            ;;
        down)
      local opts="$common $creds --schema --endpoint -e --interval --keep-config --keep-model --timeout --wait"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  if [[ "$prev" == "--dataset" || "$prev" == "--file" ]]; then
    COMPREPLY=( $(compgen -o default -- "$cur") )
    return 0
  fi

  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _clarifyctl clarifyctl
`

const zshCompletionScript = `#compdef clarifyctl

_clarifyctl() {
  local -a cmds
  cmds=(
    'eq:endpoint query'
    'mq:model query'
    'pq:processing job query'
    'cq:capture record query'
    'sample:carve a block sample out of a validation CSV'
    'send:send sampled feature rows to the endpoint'
    'bias:run a Clarify bias analysis job'
    'explain:run a Clarify SHAP explainability job'
    'report:render or diff Clarify analysis reports'
    'down:tear down the endpoint, its config, and its model'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--profile[AWS profile]:profile'
  '--region[AWS region]:region'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'clarifyctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    eq|mq|pq)
      _arguments -C \
        $common \
        '--schema[dump schema]'
      ;;
    cq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--capture-uri[capture destination URI]:uri' \
        '--dump[pretty-print full records]' \
        '(-e --endpoint)'{-e,--endpoint}'[endpoint name]:endpoint' \
        '--interval[polling interval]:interval' \
        '--objects[list capture files]' \
        '--wait[wait for first capture file]:duration'
      ;;
    sample)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--blocks[row blocks to sample]:blocks' \
        '(-b --bucket)'{-b,--bucket}'[S3 bucket]:bucket' \
        '--label[label column]:label' \
        '--out[output basename]:name' \
        '--prefix[S3 key prefix]:prefix' \
        '(-u --upload)'{-u,--upload}'[upload sample files]' \
        '::FILE:_files'
      ;;
    send)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-e --endpoint)'{-e,--endpoint}'[endpoint name]:endpoint' \
        '--file[features CSV]:file:_files' \
        '--interval[polling interval]:interval' \
        '--no-header[first line is data]' \
        '--no-wait[skip InService wait]' \
        '--sleep[pause between invocations]:duration' \
        '--timeout[InService wait budget]:duration'
      ;;
    bias|explain)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-b --bucket)'{-b,--bucket}'[S3 bucket]:bucket' \
        '--dataset[validation CSV]:file:_files' \
        '--dataset-uri[staged dataset URI]:uri' \
        '--dry-run[print the analysis document]' \
        '(-e --endpoint)'{-e,--endpoint}'[endpoint name]:endpoint' \
        '--headers[dataset column names]:headers' \
        '--instance-count[cluster size]:count' \
        '--instance-type[instance type]:type' \
        '--label[label column]:label' \
        '--no-wait[do not wait for the job]' \
        '--prefix[S3 key prefix]:prefix' \
        '--role[execution role ARN]:arn'
      ;;
    report)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--diff[compare two jobs]' \
        '(-j --job)'{-j,--job}'[job name(s)]:job'
      ;;
    down)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-e --endpoint)'{-e,--endpoint}'[endpoint name]:endpoint' \
        '--keep-config[leave the endpoint config]' \
        '--keep-model[leave the model]' \
        '--wait[wait for deletion]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _clarifyctl clarifyctl clarifyctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: clarifyctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "clarifyctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
