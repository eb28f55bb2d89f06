// Package octagonagents provides the Octagon research agents node.
package octagonagents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/go-playground/validator/v10"
)

// Recorder receives per-item outcomes and request latencies.
type Recorder interface {
	ItemProcessed(agent string, kind octagon.ErrorKind)
	RequestDuration(agent string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ItemProcessed(string, octagon.ErrorKind) {}
func (noopRecorder) RequestDuration(string, time.Duration)   {}

// Node sends each input item's query to the selected agent.
type Node struct {
	client     *octagon.Client
	credential *octagonapi.Credential
	validate   *validator.Validate
	recorder   Recorder
	now        func() time.Time
}

type Option func(*Node)

func WithClient(client *octagon.Client) Option {
	return func(n *Node) {
		if client != nil {
			n.client = client
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(n *Node) {
		if recorder != nil {
			n.recorder = recorder
		}
	}
}

// WithClock overrides the clock used for output timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Node) {
		if now != nil {
			n.now = now
		}
	}
}

func NewNode(opts ...Option) *Node {
	n := &Node{
		client:   octagon.NewClient(),
		validate: validator.New(),
		recorder: noopRecorder{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	n.credential = octagonapi.New(n.client)

	return n
}

func (n *Node) Describe() models.NodeDescription {
	return Description()
}

// Execute processes items sequentially and returns one output item per input,
// in input order. Item failures are reported as failure items, never as an error.
func (n *Node) Execute(ctx context.Context, fns protocol.ExecuteFunctions) ([]models.Item, error) {
	items := fns.InputData()
	out := make([]models.Item, 0, len(items))

	for i := range items {
		out = append(out, n.processItem(ctx, fns, i).Item(i))
	}

	return out, nil
}

type itemParameters struct {
	Agent        string
	Query        string
	IncludeUsage bool
}

type queryInput struct {
	Query string `validate:"required"`
}

func (n *Node) processItem(ctx context.Context, fns protocol.ExecuteFunctions, i int) Result {
	params, err := n.parameters(fns, i)
	if err == nil {
		err = n.validate.Struct(queryInput{Query: strings.TrimSpace(params.Query)})
		if err != nil {
			err = octagon.ErrEmptyQuery
		}
	}

	if err != nil {
		return n.fail(fns, i, params.Agent, err)
	}

	creds, err := fns.Credentials(ctx, octagonapi.Name)
	if err != nil {
		return n.fail(fns, i, params.Agent, fmt.Errorf("failed to load credentials: %w", err))
	}

	start := time.Now()
	resp, err := n.client.Query(ctx, n.credential.Authenticator(creds), octagon.Request{
		Agent: params.Agent,
		Query: params.Query,
	})
	n.recorder.RequestDuration(params.Agent, time.Since(start))

	if err != nil {
		return n.fail(fns, i, params.Agent, err)
	}

	n.recorder.ItemProcessed(params.Agent, octagon.KindNone)

	return Success{
		Agent:        params.Agent,
		Query:        params.Query,
		Analysis:     resp.Analysis(),
		Sources:      resp.Citations(),
		Usage:        resp.UsageData(),
		IncludeUsage: params.IncludeUsage,
		Timestamp:    n.now(),
	}
}

func (n *Node) fail(fns protocol.ExecuteFunctions, i int, agent string, err error) Failure {
	kind := octagon.KindOf(err)

	fns.Logger().Warn("octagon item failed",
		"item_index", i,
		"agent", agent,
		"error_kind", kind,
		"error", err,
	)
	n.recorder.ItemProcessed(agent, kind)

	return Failure{
		Err:       err,
		Agent:     stringParameter(fns, "agent", i),
		Query:     stringParameter(fns, "query", i),
		Timestamp: n.now(),
	}
}

func (n *Node) parameters(fns protocol.ExecuteFunctions, i int) (itemParameters, error) {
	var params itemParameters

	agent, err := fns.NodeParameter("agent", i, octagon.DefaultAgent)
	if err != nil {
		return params, err
	}

	params.Agent = toString(agent)

	query, err := fns.NodeParameter("query", i, "")
	if err != nil {
		return params, err
	}

	params.Query = toString(query)

	additional, err := fns.NodeParameter("additionalFields", i, map[string]any{})
	if err != nil {
		return params, err
	}

	if fields, ok := additional.(map[string]any); ok {
		params.IncludeUsage = toBool(fields["includeUsage"])
	}

	return params, nil
}

// stringParameter re-reads a parameter for a failure item and never fails.
func stringParameter(fns protocol.ExecuteFunctions, name string, i int) string {
	value, err := fns.NodeParameter(name, i, "")
	if err != nil {
		return ""
	}

	return toString(value)
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func toBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))

		return err == nil && b
	default:
		return false
	}
}
