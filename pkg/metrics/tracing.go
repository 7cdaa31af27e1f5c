package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartTransaction starts a New Relic transaction named name when ctx carries
// an application. The returned function ends it.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr, ok := applicationFromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}

// TraceMethodCall starts a segment named after the struct or package and the
// method within the transaction of ctx. It returns nil, which is safe to use,
// when ctx has no transaction.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName)),
	}
}

// MethodTracer is a segment of a method call within an existing transaction.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	for key, value := range attributes {
		t.AddAttribute(key, value)
	}
}

// OnError notices err on the enclosing transaction.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
