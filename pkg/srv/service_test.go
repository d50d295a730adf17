package srv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type failing struct{}

func (failing) Start(ctx context.Context) error    { return errors.New("boom") }
func (failing) Shutdown(ctx context.Context) error { return nil }

func TestShutdownServices_ReverseOrder(t *testing.T) {
	var order []int
	services := []Service{
		NewCleanup(func() error { order = append(order, 1); return nil }),
		NewCleanup(func() error { order = append(order, 2); return nil }),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []int{2, 1}, order)
}

func TestStartServices_FailureCallsOnFail(t *testing.T) {
	done := make(chan struct{})
	StartServices(context.Background(), []Service{failing{}}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onFail was not called")
	}
}
