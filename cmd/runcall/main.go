// runcall executes a single contract call from the command line,
// printing the execution result as JSON. It is meant for contract
// development: state comes from a flag or a file, payments are
// resolved by the real invoice codec, and HTTP responses can be
// mocked per request.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"gopkg.in/urfave/cli.v1"

	"github.com/satvm/satvm/host"
	"github.com/satvm/satvm/sandbox"
	"github.com/satvm/satvm/types"
)

func main() {
	app := cli.NewApp()
	app.ErrWriter = os.Stderr
	app.Writer = os.Stdout
	app.Name = "runcall"
	app.Usage = "Run a single call on a contract."
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "contract",
			Usage: "File with the full lua code for the contract.",
		},
		cli.StringFlag{
			Name:  "state",
			Value: "{}",
			Usage: "Current contract state as JSON string. Ignored when statefile is given.",
		},
		cli.StringFlag{
			Name:  "statefile",
			Usage: "File with the initial JSON state which will be overwritten with the new state.",
		},
		cli.StringFlag{
			Name:  "method",
			Value: types.InitMethod,
			Usage: "Contract method to run.",
		},
		cli.StringFlag{
			Name:  "payload",
			Value: "{}",
			Usage: "Payload to send with the call as a JSON string.",
		},
		cli.Int64Flag{
			Name:  "satoshis",
			Usage: "Satoshis to attach to the call.",
		},
		cli.Int64Flag{
			Name:  "funds",
			Usage: "Contract balance in satoshis. Enables funds tracking.",
		},
		cli.IntFlag{
			Name:  "quota",
			Value: sandbox.DefaultQuota,
			Usage: "Step budget for the call.",
		},
		cli.StringSliceFlag{
			Name:  "http",
			Usage: "HTTP response body to mock. Can be given multiple times; responses are consumed in order by the contract's HTTP calls. Further calls hit the network.",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log engine diagnostics to stderr.",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		os.Exit(2)
	}
}

func run(c *cli.Context) error {
	contractFile := c.String("contract")
	if contractFile == "" {
		return cli.NewExitError("missing contract file.", 1)
	}
	script, err := os.ReadFile(contractFile)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to read contract file '%s'.", contractFile), 1)
	}

	stateJSON := []byte(c.String("state"))
	stateFile := c.String("statefile")
	if stateFile != "" {
		stateJSON, err = os.ReadFile(stateFile)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("failed to read state file '%s'.", stateFile), 1)
		}
	}
	if !gjson.ValidBytes(stateJSON) {
		return cli.NewExitError("state is not valid JSON.", 1)
	}

	payload := c.String("payload")
	if !gjson.Valid(payload) {
		return cli.NewExitError("payload is not valid JSON.", 1)
	}

	log := zerolog.New(io.Discard)
	if c.Bool("verbose") {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	opts := []sandbox.Option{
		sandbox.WithQuota(c.Int("quota")),
		sandbox.WithLogger(log),
		sandbox.WithHTTPTransport(mockTransport(c.StringSlice("http"))),
	}
	if c.IsSet("funds") {
		opts = append(opts, sandbox.WithFundsTracking())
	}
	engine := sandbox.New(opts...)

	res, err := engine.Execute(context.Background(), types.CallRequest{
		Script:             string(script),
		PriorState:         types.JSON(stateJSON),
		Method:             c.String("method"),
		Payload:            types.JSON(payload),
		AttachedAmountSats: c.Int64("satoshis"),
		FundsMilliSats:     c.Int64("funds") * 1000,
	})
	if err != nil {
		return cli.NewExitError("execution error: "+err.Error(), 3)
	}

	if stateFile != "" && res.Completed() {
		if err := os.WriteFile(stateFile, append([]byte(res.StateAfter.String()), '\n'), 0o644); err != nil {
			return cli.NewExitError(fmt.Sprintf("failed to write state to file '%s'.", stateFile), 4)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return cli.NewExitError("failed to encode result: "+err.Error(), 4)
	}
	if !res.Completed() {
		return cli.NewExitError("", 3)
	}
	return nil
}

// mockTransport serves the queued mock bodies first and falls back to
// the real network once they run out.
func mockTransport(responses []string) host.RequestFunc {
	next := 0
	return func(r *http.Request) (*http.Response, error) {
		if next < len(responses) {
			body := bytes.NewBufferString(responses[next])
			next++
			return &http.Response{
				Status:        "200 OK",
				StatusCode:    200,
				Proto:         "HTTP/1.0",
				ProtoMajor:    1,
				ProtoMinor:    0,
				Request:       r,
				Body:          io.NopCloser(body),
				ContentLength: int64(body.Len()),
			}, nil
		}
		return http.DefaultClient.Do(r)
	}
}
