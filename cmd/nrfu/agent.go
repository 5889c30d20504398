package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/protocol"
)

// maxRequestSize bounds one JSON-RPC line; snapshots travel inline.
const maxRequestSize = 16 * 1024 * 1024

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Serve JSON-RPC 2.0 requests on stdin/stdout",
		Long: `agent reads one JSON-RPC 2.0 request per line from stdin and writes one response
per line to stdout. Methods: domains.list, nrfu.validate, nrfu.generate, nrfu.label,
nrfu.shorten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := events.NewMemoryBus()
			stop := watchRequests(bus)
			defer stop()
			return runAgent(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(),
				protocol.NewNRFUHandler(nrfu.DefaultRegistry()), bus)
		},
	}
}

// runAgent serves requests until in is exhausted or ctx is done.
func runAgent(ctx context.Context, in io.Reader, out io.Writer, handler *protocol.Handler, bus events.EventBus) error {
	bus.Publish(events.NewEvent(events.EventRunStart, map[string]any{
		"message": "agent mode started",
		"methods": handler.Methods(),
	}))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		start := time.Now()
		resp := handler.HandleRaw([]byte(line))

		ev := events.NewEvent(events.EventRPCRequest, requestSummary(line, resp))
		ev.Duration = time.Since(start)
		bus.Publish(ev)

		if err := encoder.Encode(resp); err != nil {
			logger.WithError(err).Error("Failed to encode response")
		}
	}

	bus.Publish(events.NewEvent(events.EventRunEnd, "agent mode stopped"))
	return scanner.Err()
}

// requestSummary describes a served request without its params.
func requestSummary(line string, resp protocol.Response) map[string]any {
	var req struct {
		Method string `json:"method"`
	}
	_ = json.Unmarshal([]byte(line), &req)

	summary := map[string]any{"method": req.Method}
	if resp.Error != nil {
		summary["error_code"] = resp.Error.Code
	}
	return summary
}

// watchRequests logs served requests at debug level until stop is called.
func watchRequests(bus events.EventBus) (stop func()) {
	ch := bus.Subscribe(events.EventRPCRequest)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			logger.WithField("request", ev.Data).WithField("duration", ev.Duration).Debug("Served request")
		}
	}()
	return func() {
		bus.Unsubscribe(ch)
		<-done
	}
}
