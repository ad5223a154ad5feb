package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
)

type greeterName string

type greeter interface {
	Lifecycle
	Greet() string
}

type fakeGreeter struct {
	word        string
	initialized bool
	cleaned     bool
	initErr     error
}

func (f *fakeGreeter) Initialize(context.Context) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.initialized = true
	return nil
}

func (f *fakeGreeter) Cleanup(context.Context) error {
	f.cleaned = true
	return nil
}

func (f *fakeGreeter) Greet() string { return f.word }

func newGreeterRegistry() *Registry[greeterName, greeter] {
	return NewRegistry[greeterName, greeter](CategoryLLM)
}

func TestResolveRegistered(t *testing.T) {
	reg := newGreeterRegistry()
	reg.Register("hello", func(context.Context) (greeter, error) {
		return &fakeGreeter{word: "hello"}, nil
	})

	g, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
	assert.True(t, g.(*fakeGreeter).initialized)
}

func TestResolveUnregisteredIsProviderNotFound(t *testing.T) {
	reg := newGreeterRegistry()

	_, err := reg.Resolve(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindProviderNotFound, apperr.KindOf(err))
}

func TestResolveConstructsOnce(t *testing.T) {
	reg := newGreeterRegistry()
	calls := 0
	reg.Register("hello", func(context.Context) (greeter, error) {
		calls++
		return &fakeGreeter{word: "hello"}, nil
	})

	first, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)
	second, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRegisterOverwritesSilently(t *testing.T) {
	reg := newGreeterRegistry()
	reg.Register("hello", func(context.Context) (greeter, error) { return &fakeGreeter{word: "old"}, nil })
	_, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)

	reg.Register("hello", func(context.Context) (greeter, error) { return &fakeGreeter{word: "new"}, nil })

	g, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "new", g.Greet())
	assert.Equal(t, []greeterName{"hello"}, reg.Names())
}

func TestFailedInitializeIsNotCached(t *testing.T) {
	reg := newGreeterRegistry()
	fail := true
	reg.Register("flaky", func(context.Context) (greeter, error) {
		if fail {
			return &fakeGreeter{initErr: errors.New("no api key")}, nil
		}
		return &fakeGreeter{word: "ok"}, nil
	})

	_, err := reg.Resolve(context.Background(), "flaky")
	require.Error(t, err)
	assert.Equal(t, apperr.KindProviderCallFailure, apperr.KindOf(err))

	fail = false
	g, err := reg.Resolve(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "ok", g.Greet())
}

func TestCloseCleansUpInstances(t *testing.T) {
	reg := newGreeterRegistry()
	inst := &fakeGreeter{word: "hello"}
	reg.Register("hello", func(context.Context) (greeter, error) { return inst, nil })
	_, err := reg.Resolve(context.Background(), "hello")
	require.NoError(t, err)

	require.NoError(t, reg.Close(context.Background()))
	assert.True(t, inst.cleaned)
}

func TestParse(t *testing.T) {
	reg := newGreeterRegistry()
	reg.Register("hello", func(context.Context) (greeter, error) { return &fakeGreeter{}, nil })

	name, ok := reg.Parse("hello")
	assert.True(t, ok)
	assert.Equal(t, greeterName("hello"), name)

	_, ok = reg.Parse("nope")
	assert.False(t, ok)
}
