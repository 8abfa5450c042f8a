package spoolverb

import (
	"testing"
	"time"

	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecDecode(t *testing.T) {
	type testcase struct {
		name          string
		input         string
		expected      Verb
		expectedError error
	}
	base := Verb{Meta: DefaultMeta, Version: DefaultVersion}
	with := func(f func(v *Verb)) Verb {
		v := base
		f(&v)
		return v
	}

	testcases := []testcase{
		{
			name:     "register",
			input:    "ASCRIBESPOOL01REGISTER1",
			expected: with(func(v *Verb) { v.Action = ActionRegister; v.EditionNumber = 1 }),
		},
		{
			name:     "transfer of the master edition",
			input:    "ASCRIBESPOOL01TRANSFER0",
			expected: with(func(v *Verb) { v.Action = ActionTransfer }),
		},
		{
			name:     "editions",
			input:    "ASCRIBESPOOL01EDITIONS10",
			expected: with(func(v *Verb) { v.Action = ActionEditions; v.NumEditions = 10 }),
		},
		{
			name:  "loan",
			input: "ASCRIBESPOOL01LOAN3/150101150131",
			expected: with(func(v *Verb) {
				v.Action = ActionLoan
				v.EditionNumber = 3
				v.LoanStart = "150101"
				v.LoanEnd = "150131"
			}),
		},
		{
			name:  "loan of the piece",
			input: "ASCRIBESPOOL01LOAN/150101150131",
			expected: with(func(v *Verb) {
				v.Action = ActionLoan
				v.LoanStart = "150101"
				v.LoanEnd = "150131"
			}),
		},
		{
			name:     "fuel",
			input:    "ASCRIBESPOOL01FUEL",
			expected: with(func(v *Verb) { v.Action = ActionFuel }),
		},
		{
			name:     "piece",
			input:    "ASCRIBESPOOL01PIECE",
			expected: with(func(v *Verb) { v.Action = ActionPiece }),
		},
		{
			name:     "consigned registration",
			input:    "ASCRIBESPOOL01CONSIGNEDREGISTRATION",
			expected: with(func(v *Verb) { v.Action = ActionConsignedRegistration }),
		},
		{
			name:          "missing edition",
			input:         "ASCRIBESPOOL01TRANSFER",
			expectedError: errs.InvalidArgument,
		},
		{
			name:          "loan without window",
			input:         "ASCRIBESPOOL01LOAN1",
			expectedError: errs.InvalidArgument,
		},
		{
			name:          "unknown action",
			input:         "ASCRIBESPOOL01BURN1",
			expectedError: errs.Unsupported,
		},
		{
			name:          "other version",
			input:         "ASCRIBESPOOL02TRANSFER1",
			expectedError: errs.Unsupported,
		},
		{
			name:          "other meta",
			input:         "SOMEPROTOCOL01TRANSFER1",
			expectedError: errs.InvalidArgument,
		},
		{
			name:          "not a verb",
			input:         "hello world",
			expectedError: errs.InvalidArgument,
		},
		{
			name:          "empty",
			input:         "",
			expectedError: errs.InvalidArgument,
		},
	}

	codec := NewCodec(DefaultVersion)
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			verb, err := codec.Decode([]byte(tc.input))
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, verb)
		})
	}
}

func TestCodecEncode(t *testing.T) {
	codec := NewCodec("")

	t.Run("round trip", func(t *testing.T) {
		verbs := []Verb{
			{Action: ActionRegister, EditionNumber: 1},
			{Action: ActionConsign, EditionNumber: 2},
			{Action: ActionUnconsign, EditionNumber: 2},
			{Action: ActionMigrate, EditionNumber: 7},
			{Action: ActionEditions, NumEditions: 100},
			{Action: ActionLoan, EditionNumber: 4, LoanStart: "151224", LoanEnd: "160101"},
			{Action: ActionFuel},
			{Action: ActionPiece},
			{Action: ActionConsignedRegistration},
		}
		for _, verb := range verbs {
			payload, err := codec.Encode(verb)
			require.NoError(t, err, verb.Action)

			decoded, err := codec.Decode(payload)
			require.NoError(t, err, string(payload))

			verb.Meta, verb.Version = DefaultMeta, DefaultVersion
			assert.Equal(t, verb, decoded)
		}
	})
	t.Run("loan payload", func(t *testing.T) {
		payload, err := codec.Encode(Verb{Action: ActionLoan, EditionNumber: 2, LoanStart: "150101", LoanEnd: "150131"})
		require.NoError(t, err)
		assert.Equal(t, "ASCRIBESPOOL01LOAN2/150101150131", string(payload))
	})
	t.Run("editions without total", func(t *testing.T) {
		_, err := codec.Encode(Verb{Action: ActionEditions})
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
	t.Run("loan dates must be digits", func(t *testing.T) {
		_, err := codec.Encode(Verb{Action: ActionLoan, EditionNumber: 1, LoanStart: "15JAN1", LoanEnd: "150131"})
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
	t.Run("negative edition", func(t *testing.T) {
		_, err := codec.Encode(Verb{Action: ActionTransfer, EditionNumber: -1})
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
	t.Run("unknown action", func(t *testing.T) {
		_, err := codec.Encode(Verb{Action: "BURN"})
		assert.ErrorIs(t, err, errs.Unsupported)
	})
}

func TestCodecSupportedActions(t *testing.T) {
	assert.Equal(t, Actions, NewCodec("").SupportedActions())

	restricted := NewCodec("", WithActions(ActionRegister, ActionTransfer))
	assert.Equal(t, []Action{ActionRegister, ActionTransfer}, restricted.SupportedActions())

	_, err := restricted.Decode([]byte("ASCRIBESPOOL01LOAN1/150101150131"))
	assert.ErrorIs(t, err, errs.Unsupported)

	// callers can't mutate the codec through the returned slice
	restricted.SupportedActions()[0] = ActionLoan
	assert.Equal(t, ActionRegister, restricted.SupportedActions()[0])
}

func TestCodecMetaVersion(t *testing.T) {
	codec := NewCodec("")
	assert.Equal(t, DefaultMeta, codec.Meta())
	assert.Equal(t, DefaultVersion, codec.Version())
	assert.Equal(t, "02", NewCodec("02").Version())
}

func TestParseLedgerTime(t *testing.T) {
	actual, err := ParseLedgerTime("2015-10-21T16:29:03 UTC")
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 10, 21, 16, 29, 3, 0, time.UTC).Equal(actual))
	assert.Equal(t, "2015-10-21T16:29:03 UTC", FormatLedgerTime(actual))

	_, err = ParseLedgerTime("21/10/2015")
	assert.ErrorIs(t, err, errs.InvalidArgument)
}

func TestLoanWindow(t *testing.T) {
	start, end, err := Verb{Action: ActionLoan, LoanStart: "150101", LoanEnd: "150131"}.LoanWindow()
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).Equal(start))
	assert.True(t, time.Date(2015, 1, 31, 0, 0, 0, 0, time.UTC).Equal(end))

	_, _, err = Verb{Action: ActionTransfer, EditionNumber: 1}.LoanWindow()
	assert.ErrorIs(t, err, errs.InvalidArgument)
}

func TestParseAction(t *testing.T) {
	action, ok := ParseAction("loan")
	assert.True(t, ok)
	assert.Equal(t, ActionLoan, action)

	_, ok = ParseAction("burn")
	assert.False(t, ok)

	assert.False(t, ActionEditions.HasEdition())
	assert.True(t, ActionLoan.HasEdition())
	assert.True(t, ActionRegister.HasEdition())
}
