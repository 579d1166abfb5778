package qerr_test

import (
	"fmt"
	"testing"

	"github.com/brimdata/gather/qerr"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := qerr.UnknownVariable("g")
	assert.EqualError(t, err, "unknown variable 'g'")
	wrapped := fmt.Errorf("compiling collect: %w", err)
	assert.True(t, errors.Is(wrapped, qerr.ErrUnknownVariable))
	assert.Equal(t, qerr.KindUnknownVariable, qerr.KindOf(wrapped))
	assert.False(t, errors.Is(wrapped, qerr.ErrInvalidAggregateExpression))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, qerr.KindUnknown, qerr.KindOf(nil))
	assert.Equal(t, qerr.KindUnknown, qerr.KindOf(errors.New("other")))
	assert.Equal(t, qerr.KindResourceLimitExceeded, qerr.KindOf(qerr.ResourceLimit("sort", 200, 100)))
	assert.Equal(t, qerr.KindBadParameter, qerr.KindOf(qerr.BadParameter("bad")))
	assert.Equal(t, qerr.KindParseOrStructural, qerr.KindOf(qerr.Wrap(qerr.KindParseOrStructural, errors.New("x"), "collect")))
}

func TestCodes(t *testing.T) {
	assert.Equal(t, 1574, qerr.KindInvalidAggregateExpression.Code())
	assert.Equal(t, 1512, qerr.KindUnknownVariable.Code())
	assert.Equal(t, 32, qerr.KindResourceLimitExceeded.Code())
	assert.Equal(t, "InvalidOptionsAttribute", qerr.KindInvalidOptionsAttribute.String())
}

func TestWarnings(t *testing.T) {
	var w qerr.Warnings
	w.Add(qerr.KindInvalidOptionsAttribute, "invalid option attribute '%s'", "tititi")
	assert.Equal(t, []string{"invalid option attribute 'tititi'"}, w.Messages())
	assert.Equal(t, 1575, w[0].Code)
}
