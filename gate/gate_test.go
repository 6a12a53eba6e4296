package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diewo77/gleeful/gate"
)

type order struct {
	ID     uint
	UserID uint
}

// ownerPolicy allows access to an order only to its owner.
type ownerPolicy struct{}

func (ownerPolicy) Can(_ context.Context, user uint, _ gate.Action, resource any) bool {
	o, ok := resource.(*order)
	return ok && o.UserID == user
}

// profiles is a fixed user -> profile table.
type profiles map[uint]gate.Profile

func (p profiles) Resolve(_ context.Context, user uint) (gate.Profile, error) {
	return p[user], nil
}

func TestHybridGate_OwnerPolicy(t *testing.T) {
	g := gate.NewHybridGate[uint](profiles{
		1: gate.NewStaticProfile("customer", "order:view"),
		2: gate.NewStaticProfile("customer", "order:view"),
	})
	g.Register("order", ownerPolicy{})
	ctx := context.Background()

	cases := []struct {
		name     string
		user     uint
		resource string
		target   any
		want     error
	}{
		{"anonymous", 0, "order", &order{UserID: 1}, gate.ErrUnauthorized},
		{"no permission", 1, "invoice", nil, gate.ErrUnauthorized},
		{"owner", 1, "order", &order{UserID: 1}, nil},
		{"stranger", 2, "order", &order{UserID: 1}, gate.ErrUnauthorized},
		{"list without resource", 2, "order", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Authorize(ctx, tc.user, gate.ActionView, tc.resource, tc.target)
			if err != tc.want {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPermission_Matches(t *testing.T) {
	cases := []struct {
		have, want gate.Permission
		ok         bool
	}{
		{"*:*", "service:delete", true},
		{"cart:*", "cart:update", true},
		{"cart:*", "order:view", false},
		{"order:view", "order:view", true},
		{"order:view", "order:delete", false},
		{"garbage", "order:view", false},
	}
	for _, tc := range cases {
		if got := tc.have.Matches(tc.want); got != tc.ok {
			t.Errorf("%s matches %s: expected %v, got %v", tc.have, tc.want, tc.ok, got)
		}
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.NewPermission("news", gate.ActionUpdate).Parse()
	if res != "news" || act != gate.ActionUpdate {
		t.Errorf("unexpected parse result %q %q", res, act)
	}
	res, act = gate.Permission("broken").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty parts, got %q %q", res, act)
	}
}

func TestHybridGate(t *testing.T) {
	g := gate.NewHybridGate[uint](profiles{
		1: gate.NewStaticProfile("admin", gate.PermissionSuperAdmin),
		2: gate.NewStaticProfile("customer", "cart:*", "order:create", "order:view"),
	})
	g.Register("order", ownerPolicy{})
	ctx := context.Background()

	if err := g.Authorize(ctx, 1, gate.ActionDelete, "service", nil); err != nil {
		t.Errorf("admin should delete services: %v", err)
	}
	if g.Can(ctx, 2, gate.ActionDelete, "service", nil) {
		t.Error("customer must not delete services")
	}
	if !g.Can(ctx, 2, gate.ActionView, "order", &order{UserID: 2}) {
		t.Error("customer should view own order")
	}
	if g.Can(ctx, 2, gate.ActionView, "order", &order{UserID: 3}) {
		t.Error("customer must not view foreign order")
	}
	if g.Can(ctx, 3, gate.ActionView, "service", nil) {
		t.Error("user without profile must be denied")
	}
	if g.CanProfile(ctx, 0, gate.ActionView, "cart") {
		t.Error("anonymous must be denied")
	}
}

type countingResolver struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (r *countingResolver) Resolve(_ context.Context, user uint) (gate.Profile, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	if r.err != nil {
		return nil, r.err
	}
	return gate.NewStaticProfile("customer", "cart:*"), nil
}

func TestCachedResolver_CachesAndInvalidates(t *testing.T) {
	inner := &countingResolver{}
	cached := gate.NewCachedResolver[uint](inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.Resolve(ctx, 7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("expected 1 inner call, got %d", n)
	}

	cached.Invalidate(7)
	_, _ = cached.Resolve(ctx, 7)
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("expected 2 inner calls after invalidate, got %d", n)
	}

	cached.InvalidateAll()
	_, _ = cached.Resolve(ctx, 7)
	if n := inner.calls.Load(); n != 3 {
		t.Errorf("expected 3 inner calls after invalidate all, got %d", n)
	}
}

func TestCachedResolver_Expires(t *testing.T) {
	inner := &countingResolver{}
	cached := gate.NewCachedResolver[uint](inner, 10*time.Millisecond)
	ctx := context.Background()

	_, _ = cached.Resolve(ctx, 1)
	time.Sleep(20 * time.Millisecond)
	_, _ = cached.Resolve(ctx, 1)
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("expected refetch after ttl, got %d calls", n)
	}
}

func TestCachedResolver_SharesConcurrentMisses(t *testing.T) {
	inner := &countingResolver{delay: 50 * time.Millisecond}
	cached := gate.NewCachedResolver[uint](inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cached.Resolve(context.Background(), 5)
		}()
	}
	wg.Wait()
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("expected 1 shared inner call, got %d", n)
	}
}

func TestCachedResolver_DoesNotCacheErrors(t *testing.T) {
	inner := &countingResolver{err: errors.New("db down")}
	cached := gate.NewCachedResolver[uint](inner, time.Minute)
	ctx := context.Background()

	if _, err := cached.Resolve(ctx, 1); err == nil {
		t.Fatal("expected error")
	}
	_, _ = cached.Resolve(ctx, 1)
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("errors must not be cached, got %d calls", n)
	}
}
