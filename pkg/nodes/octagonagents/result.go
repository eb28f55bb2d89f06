package octagonagents

import (
	"time"

	"github.com/dukex/operion-octagon/pkg/models"
)

// TimestampFormat renders timestamps as UTC ISO-8601 with milliseconds.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Result is the outcome of one input item: a Success or a Failure.
type Result interface {
	Item(index int) models.Item
}

type Success struct {
	Agent        string
	Query        string
	Analysis     string
	Sources      []any
	Usage        any
	IncludeUsage bool
	Timestamp    time.Time
}

func (s Success) Item(index int) models.Item {
	data := map[string]any{
		"agent":    s.Agent,
		"query":    s.Query,
		"analysis": s.Analysis,
		"sources":  s.Sources,
		"metadata": map[string]any{
			"apiType":   "responses",
			"timestamp": s.Timestamp.UTC().Format(TimestampFormat),
		},
	}

	if s.IncludeUsage {
		data["usage"] = s.Usage
	}

	return models.NewItem(index, data)
}

type Failure struct {
	Err       error
	Agent     string
	Query     string
	Timestamp time.Time
}

func (f Failure) Item(index int) models.Item {
	return models.NewItem(index, map[string]any{
		"error":     true,
		"message":   f.Err.Error(),
		"query":     f.Query,
		"agent":     f.Agent,
		"timestamp": f.Timestamp.UTC().Format(TimestampFormat),
	})
}
