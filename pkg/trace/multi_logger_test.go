package trace_test

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
	"github.com/crosstalk-go/crosstalk/pkg/trace/mocks"
)

func TestMultiLoggerFansOut(t *testing.T) {
	first := mocks.NewMockLogger(t)
	second := mocks.NewMockLogger(t)

	event := trace.Event{Group: "g", Kind: trace.KindSelection, Action: trace.ActionSet}
	first.EXPECT().Log(event).Return().Once()
	second.EXPECT().Log(mock.MatchedBy(func(e trace.Event) bool { return e.Group == "g" })).Return().Once()

	trace.NewMultiLogger(first, nil, second).Log(event)
}
