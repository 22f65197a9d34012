package meter

// This file contains the external command bandwidth feed.  A shell command,
// run locally or over ssh, prints either netstat rate rows or /proc/net/dev
// counter rows once a second and each line is parsed as it arrives.

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

// DetectOS returns the uname of the local machine, or of host when one is
// given
func DetectOS(ctx context.Context, host string) (osName string, err errors.Error) {
	cmd := exec.CommandContext(ctx, "uname")
	if len(host) != 0 {
		cmd = exec.CommandContext(ctx, "ssh", host, "uname")
		cmd.Stdin = os.Stdin
		cmd.Stderr = os.Stderr
	}
	out, errGo := cmd.Output()
	if errGo != nil {
		return "", errors.Wrap(errGo).With("host", host).With("stack", stack.Trace().TrimRuntime())
	}
	return strings.TrimSpace(string(out)), nil
}

func procNetScript(interfaces []string) string {
	return fmt.Sprintf("while true; do cat /proc/net/dev | egrep '(%s)'; sleep 1; done", strings.Join(interfaces, "|"))
}

func netstatScript(interfaces []string) string {
	return fmt.Sprintf("netstat -w 1 -I %s", strings.Join(interfaces, ","))
}

// remoteScript chooses between netstat and /proc/net/dev on the far side so
// only one ssh session, and one password prompt, is needed
func remoteScript(interfaces []string) string {
	return fmt.Sprintf(`
OS=$(uname)
if [ "$OS" = "Darwin" ]; then
    %s
else
    %s
fi
`, netstatScript(interfaces), procNetScript(interfaces))
}

// FeedScript returns the shell text that streams bandwidth rows for the
// interfaces, osName is only consulted for local feeds
func FeedScript(host string, osName string, interfaces []string) (script string) {
	switch {
	case len(host) != 0:
		return remoteScript(interfaces)
	case osName == "Darwin":
		return netstatScript(interfaces)
	default:
		return procNetScript(interfaces)
	}
}

type CommandFeed struct {
	host    string
	script  string
	tracker *Tracker
	sampleC chan<- model.Sample
	errorC  chan<- errors.Error
}

// NewCommandFeed prepares a feed, when host is empty the script runs under
// the local sh otherwise it is handed to ssh
func NewCommandFeed(host string, script string, sampleC chan<- model.Sample, errorC chan<- errors.Error) (feed *CommandFeed) {
	return &CommandFeed{
		host:    host,
		script:  script,
		tracker: NewTracker(),
		sampleC: sampleC,
		errorC:  errorC,
	}
}

func (feed *CommandFeed) command(ctx context.Context) (cmd *exec.Cmd) {
	if len(feed.host) == 0 {
		return exec.CommandContext(ctx, "sh", "-c", feed.script)
	}
	cmd = exec.CommandContext(ctx, "ssh", feed.host, feed.script)
	// Allows ssh to prompt for a password on the terminal
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	return cmd
}

// Start launches the command and returns a reader for its output, the
// process is killed when ctx is cancelled
func (feed *CommandFeed) Start(ctx context.Context) (cmd *exec.Cmd, out io.ReadCloser, err errors.Error) {
	cmd = feed.command(ctx)
	out, errGo := cmd.StdoutPipe()
	if errGo != nil {
		return nil, nil, errors.Wrap(errGo).With("host", feed.host).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = cmd.Start(); errGo != nil {
		return nil, nil, errors.Wrap(errGo).With("host", feed.host).With("stack", stack.Trace().TrimRuntime())
	}
	return cmd, out, nil
}

// Consume parses lines from r until it is exhausted or quitC closes
func (feed *CommandFeed) Consume(r io.Reader, quitC <-chan struct{}) (err errors.Error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sample, ok := feed.tracker.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case feed.sampleC <- sample:
		case <-quitC:
			return nil
		case <-time.After(750 * time.Millisecond):
			logger.Warn("bandwidth sample dropped", "host", feed.host)
		}
	}
	if errGo := scanner.Err(); errGo != nil {
		return errors.Wrap(errGo).With("host", feed.host).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Run starts the command and streams samples until the command exits or
// quitC is closed.  A command exiting on its own is reported as an error.
func (feed *CommandFeed) Run(quitC <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-quitC:
			cancel()
		case <-ctx.Done():
		}
	}()

	cmd, out, err := feed.Start(ctx)
	if err != nil {
		feed.sendError(err)
		return
	}

	if err = feed.Consume(out, quitC); err != nil {
		feed.sendError(err)
	}

	errGo := cmd.Wait()
	select {
	case <-quitC:
		return
	default:
	}
	if errGo == nil {
		feed.sendError(errors.New("bandwidth feed exited").With("host", feed.host).With("stack", stack.Trace().TrimRuntime()))
		return
	}
	feed.sendError(errors.Wrap(errGo).With("host", feed.host).With("stack", stack.Trace().TrimRuntime()))
}

func (feed *CommandFeed) sendError(err errors.Error) {
	select {
	case feed.errorC <- err:
	case <-time.After(500 * time.Millisecond):
		logger.Warn("could not send error for bandwidth feed", "error", err.Error())
	}
}
