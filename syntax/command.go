package syntax

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds a single external parser run.
const DefaultCommandTimeout = 30 * time.Second

// Command delegates parsing to an external program that reads source on
// stdin and writes `{"program": <ESTree>, "errors": [...]}` to stdout.
// The program receives `--source-type <kind> --filename <path>` after its
// configured arguments.
type Command struct {
	argv    []string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewCommand splits commandLine with shell quoting rules.
func NewCommand(commandLine string) (*Command, error) {
	argv, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid parser command %q", commandLine)
	}
	if len(argv) == 0 {
		return nil, errors.WithHint(
			errors.New("parser command is empty"),
			"Set parser.command to an ESTree-producing parser, or leave it unset for the built-in parser",
		)
	}
	return &Command{
		argv:    argv,
		timeout: DefaultCommandTimeout,
		log:     logger.Named("syntax.command"),
	}, nil
}

// WithTimeout returns a copy of c with a different per-file timeout.
func (c *Command) WithTimeout(d time.Duration) *Command {
	cp := *c
	cp.timeout = d
	return &cp
}

// Argv returns the program and arguments used for path.
func (c *Command) Argv(path string, kind SourceKind) []string {
	argv := make([]string, 0, len(c.argv)+4)
	argv = append(argv, c.argv...)
	return append(argv, "--source-type", kind.String(), "--filename", path)
}

// Parse implements Parser.
func (c *Command) Parse(path string, src []byte, kind SourceKind) (*File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	argv := c.Argv(path, kind)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(src)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	c.log.Debugw("External parser finished",
		"file", path,
		"program", argv[0],
		"output_bytes", stdout.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// A parser may exit non-zero and still report structured diagnostics.
	if stdout.Len() > 0 {
		file, err := DecodeESTree(path, src, kind, stdout.Bytes())
		var syntaxErrs SyntaxErrors
		if err == nil || errors.As(err, &syntaxErrs) {
			return file, err
		}
		if runErr == nil {
			return nil, err
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.Newf("parser command timed out after %s", c.timeout)
	}
	if runErr != nil {
		err := errors.Wrapf(runErr, "parser command %q failed", argv[0])
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, msg)
		}
		return nil, err
	}
	return nil, errors.Newf("parser command %q produced no output", argv[0])
}
