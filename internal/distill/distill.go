// Package distill implements the Trajectory/SFT Distiller (C10): replays
// an agent's proposed patch against the gold tree, decides resolution by
// the same FAIL_TO_PASS/PASS_TO_PASS criteria the Validator already
// classifies by, and serializes trajectories (all of them, or only the
// resolved ones) as supervised fine-tuning records in one of two tool-call
// dialects. Re-applies patches
// through internal/environment, the same lifecycle the Validator uses, per
// SPEC_FULL.md's "dogfooding the container lifecycle" design note.
package distill

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"swesmith/internal/environment"
	"swesmith/internal/errs"
	"swesmith/internal/mangle"
	"swesmith/internal/profile"
)

// Dialect selects how a trajectory's tool calls are serialized into its
// SFT record, per spec §4.10's "function-call or XML-tagged tool-call."
type Dialect string

const (
	DialectFunctionCall Dialect = "function_call"
	DialectXMLToolCall  Dialect = "xml_tool_call"
)

// ToolCall is one tool invocation within a trajectory message.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Message is one turn of an agent trajectory.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Trajectory is one agent run against an instance: its message history and
// its final proposed patch.
type Trajectory struct {
	InstanceID string
	Messages   []Message
	ModelPatch string
}

// TestExpectation is the FAIL_TO_PASS/PASS_TO_PASS pair a trajectory's
// instance was validated against, the same lists the Instance Gatherer
// persisted.
type TestExpectation struct {
	FailToPass []string
	PassToPass []string
}

// SFTRecord is the emitted record per spec §4.10 step 3:
// "{instance_id, messages[], model_patch, resolved}".
type SFTRecord struct {
	InstanceID string            `json:"instance_id"`
	Messages   []json.RawMessage `json:"messages"`
	ModelPatch string            `json:"model_patch"`
	Resolved   bool              `json:"resolved"`
}

// Distiller evaluates trajectories against the same container lifecycle
// the Validator uses.
type Distiller struct {
	builder *environment.Builder
}

// NewDistiller returns a Distiller.
func NewDistiller(builder *environment.Builder) *Distiller {
	return &Distiller{builder: builder}
}

// Evaluate applies traj.ModelPatch over the gold tree in a fresh instance
// of imageName, re-runs the effective test command, and reports resolution
// per spec §4.10 step 2: "resolved iff all its FAIL_TO_PASS now pass and
// all PASS_TO_PASS still pass." An apply failure, run timeout, or harness
// crash is treated as unresolved, not an error, so one bad trajectory
// doesn't abort a whole distillation run.
func (d *Distiller) Evaluate(ctx context.Context, p *profile.Profile, imageName string, traj Trajectory, expect TestExpectation) (resolved bool, testOutput string, err error) {
	inst, err := d.builder.StartInstance(ctx, p, imageName)
	if err != nil {
		return false, "", err
	}
	defer func() { _ = inst.Teardown(context.Background()) }()

	if err := inst.ApplyPatch(ctx, traj.ModelPatch); err != nil {
		return false, "", nil
	}

	outcomes, rawLog, err := inst.RunTests(ctx)
	if err != nil {
		return false, rawLog, nil
	}

	for _, t := range expect.FailToPass {
		if outcomes[t] != mangle.OutcomePass {
			return false, rawLog, nil
		}
	}
	for _, t := range expect.PassToPass {
		if outcomes[t] != mangle.OutcomePass {
			return false, rawLog, nil
		}
	}
	return true, rawLog, nil
}

// LengthReport summarizes the serialized-record length distribution, per
// spec §4.10's "Length policy: ... the distiller reports the distribution."
// Length is measured in characters of the serialized JSON line: no
// tokenizer library appears anywhere in the example pack to ground a
// token-accurate count on, so a character-count proxy is used and named as
// such rather than implying token-exactness.
type LengthReport struct {
	Count   int   `json:"count"`
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Mean    int   `json:"mean"`
	P50     int   `json:"p50"`
	P90     int   `json:"p90"`
	Lengths []int `json:"-"`
}

func buildLengthReport(lengths []int) LengthReport {
	if len(lengths) == 0 {
		return LengthReport{}
	}
	sorted := append([]int(nil), lengths...)
	sort.Ints(sorted)
	sum := 0
	for _, l := range sorted {
		sum += l
	}
	percentile := func(p float64) int {
		idx := int(p * float64(len(sorted)-1))
		return sorted[idx]
	}
	return LengthReport{
		Count:   len(sorted),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Mean:    sum / len(sorted),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		Lengths: sorted,
	}
}

// Distill serializes trajectories into SFTRecords, per spec §4.10 steps
// 3-5. resolvedOnly filters to resolved-only records (step 4). Resolution
// itself must already have been computed per-trajectory via Evaluate; this
// function only serializes and reports.
func Distill(trajectories []Trajectory, resolved map[string]bool, dialect Dialect, resolvedOnly bool) ([]SFTRecord, LengthReport, error) {
	var records []SFTRecord
	var lengths []int
	for _, traj := range trajectories {
		isResolved := resolved[traj.InstanceID]
		if resolvedOnly && !isResolved {
			continue
		}
		msgs, err := serializeMessages(traj.Messages, dialect)
		if err != nil {
			return nil, LengthReport{}, errs.New(errs.KindSchema, "distill.Distill", err)
		}
		rec := SFTRecord{InstanceID: traj.InstanceID, Messages: msgs, ModelPatch: traj.ModelPatch, Resolved: isResolved}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, LengthReport{}, errs.New(errs.KindSchema, "distill.Distill", err)
		}
		lengths = append(lengths, len(b))
		records = append(records, rec)
	}
	return records, buildLengthReport(lengths), nil
}

// serializeMessages renders msgs per dialect. function_call keeps each
// message's structured tool_calls field; xml_tool_call inlines each tool
// call as an XML-tagged element in the message content and drops the
// structured field, the two shapes spec §4.10 names.
func serializeMessages(msgs []Message, dialect Dialect) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		var rendered Message
		switch dialect {
		case DialectFunctionCall:
			rendered = m
		case DialectXMLToolCall:
			rendered = Message{Role: m.Role, Content: m.Content + xmlToolCalls(m.ToolCalls)}
		default:
			return nil, fmt.Errorf("distill: unknown dialect %q", dialect)
		}
		b, err := json.Marshal(rendered)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func xmlToolCalls(calls []ToolCall) string {
	var s string
	for _, c := range calls {
		s += fmt.Sprintf("\n<tool_call name=%q id=%q>%s</tool_call>", c.Name, c.ID, string(c.Input))
	}
	return s
}

// NewRunID mints a short run identifier for naming a distillation batch's
// output file, the same truncated-uuid convention the campaign runner uses
// for its own run identifiers.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// WriteJSONL writes records as one JSON object per line to path, per spec
// §4.10 step 5's "one JSON-line per instance."
func WriteJSONL(path string, records []SFTRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.New(errs.KindHarnessCrash, "distill.WriteJSONL", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return errs.New(errs.KindHarnessCrash, "distill.WriteJSONL", err)
		}
	}
	return nil
}
