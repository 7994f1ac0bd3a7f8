package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zodwire/zodwire/internal/request"
)

// SendConfig captures the options for the send command.
type SendConfig struct {
	Method  string
	Target  string
	Items   []string
	Timeout time.Duration
	Pretty  bool
	Verbose bool
}

var sendRunner = runSend

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [METHOD] URL [ITEM...]",
		Short: "Send an HTTP request described by httpie-style items",
		Long: "Send an HTTP request. Items after the URL set headers (Name:value), " +
			"query parameters (name==value), string body fields (name=value) and " +
			"raw JSON body fields (name:=json). The method defaults to GET, or POST " +
			"when body fields are present.",
		Example: strings.TrimSpace(`  zodwire send example.com/api/users
  zodwire send POST api.example.com/users name=Alice age:=30
  zodwire send api.example.com/search q==zod X-API-Key:secret`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := cmd.Flags().GetDuration("timeout")
			if err != nil {
				return err
			}
			pretty, err := cmd.Flags().GetBool("pretty")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			method, target, items := splitSendArgs(args)
			cfg := &SendConfig{
				Method:  method,
				Target:  target,
				Items:   items,
				Timeout: timeout,
				Pretty:  pretty,
				Verbose: verbose,
			}
			return sendRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Duration("timeout", request.DefaultTimeout, "Request timeout")
	cmd.Flags().Bool("pretty", true, "Re-indent JSON response bodies")

	return cmd
}

// splitSendArgs recognizes an optional leading method: the first argument is
// treated as the method only when it names one and a URL follows.
func splitSendArgs(args []string) (method, target string, items []string) {
	if len(args) >= 2 && isHTTPMethod(args[0]) {
		return args[0], args[1], args[2:]
	}
	return "", args[0], args[1:]
}

var sendMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {}, "PATCH": {}, "HEAD": {}, "OPTIONS": {},
}

func isHTTPMethod(s string) bool {
	_, ok := sendMethods[strings.ToUpper(s)]
	return ok
}

func runSend(ctx context.Context, cfg *SendConfig) error {
	items, err := request.ParseItems(cfg.Items)
	if err != nil {
		return usagef("send: %v", err)
	}
	req, err := request.Build(cfg.Method, cfg.Target, items)
	if err != nil {
		return usagef("send: %v", err)
	}

	opts := request.Options{Timeout: cfg.Timeout, Verbose: cfg.Verbose}
	if cfg.Verbose {
		opts.OnRequest = func(line string) {
			fmt.Fprintln(os.Stderr, strings.TrimRight(line, "\n"))
			fmt.Fprintln(os.Stderr)
		}
	}

	resp, err := request.Do(ctx, req, opts)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printResponseMeta(os.Stderr, resp)
	}

	body := resp.Body
	if cfg.Pretty {
		body = resp.PrettyBody()
	}
	if len(body) > 0 {
		os.Stdout.Write(body)
		if body[len(body)-1] != '\n' {
			fmt.Fprintln(os.Stdout)
		}
	}

	return nil
}

func printResponseMeta(w *os.File, resp *request.Response) {
	fmt.Fprintln(w, resp.Status)
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)
}
