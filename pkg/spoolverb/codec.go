package spoolverb

import (
	"slices"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
)

// Codec decodes and encodes verbs of one meta/version pair.
type Codec struct {
	meta    string
	version string
	actions []Action
}

type CodecOption func(*Codec)

// WithActions restricts the actions the codec accepts.
func WithActions(actions ...Action) CodecOption {
	return func(c *Codec) {
		c.actions = slices.Clone(actions)
	}
}

// NewCodec creates a codec for the given version. Defaults to DefaultVersion.
func NewCodec(version string, opts ...CodecOption) *Codec {
	c := &Codec{
		meta:    DefaultMeta,
		version: utils.Default(version, DefaultVersion),
		actions: slices.Clone(Actions),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Meta() string    { return c.meta }
func (c *Codec) Version() string { return c.version }

// SupportedActions returns the actions this codec decodes.
func (c *Codec) SupportedActions() []Action {
	return slices.Clone(c.actions)
}

// Decode decodes a verb payload.
//
// Payloads that are not SPOOL verbs fail with errs.InvalidArgument,
// verbs of another protocol version or with an unknown action fail with errs.Unsupported.
func (c *Codec) Decode(payload []byte) (Verb, error) {
	verb, err := parseVerb(string(payload))
	if err != nil {
		return Verb{}, errors.WithStack(err)
	}
	if verb.Meta != c.meta {
		return Verb{}, errors.Wrapf(errs.InvalidArgument, "unexpected meta %q", verb.Meta)
	}
	if verb.Version != c.version {
		return Verb{}, errors.Wrapf(errs.Unsupported, "unsupported verb version %q", verb.Version)
	}
	if !slices.Contains(c.actions, verb.Action) {
		return Verb{}, errors.Wrapf(errs.Unsupported, "unsupported action %q", verb.Action)
	}
	return verb, nil
}

// Encode returns the payload of the given verb. Meta and version are taken from the codec.
func (c *Codec) Encode(verb Verb) ([]byte, error) {
	if !slices.Contains(c.actions, verb.Action) {
		return nil, errors.Wrapf(errs.Unsupported, "unsupported action %q", verb.Action)
	}
	if verb.EditionNumber < 0 || verb.NumEditions < 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "edition numbers can't be negative")
	}
	switch verb.Action {
	case ActionEditions:
		if verb.NumEditions == 0 {
			return nil, errors.Wrap(errs.InvalidArgument, "EDITIONS requires the number of editions")
		}
	case ActionLoan:
		if len(verb.LoanStart) != loanDateLen || len(verb.LoanEnd) != loanDateLen {
			return nil, errors.Wrapf(errs.InvalidArgument, "loan window must be two YYMMDD dates, got %q and %q", verb.LoanStart, verb.LoanEnd)
		}
	}

	verb.Meta = c.meta
	verb.Version = c.version
	payload := []byte(verb.String())

	// round trip guards against loan dates that aren't digits
	if _, err := parseVerb(string(payload)); err != nil {
		return nil, errors.WithStack(err)
	}
	return payload, nil
}
