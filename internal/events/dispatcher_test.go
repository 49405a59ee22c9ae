package events

import (
	"context"
	"testing"
	"time"
)

type recordedView struct {
	provider, viewer uint64
}

type fakeViews struct {
	got []recordedView
}

func (f *fakeViews) LogProfileView(ctx context.Context, providerID, viewerID uint64, at time.Time) error {
	f.got = append(f.got, recordedView{providerID, viewerID})
	return nil
}

func TestDispatcher_Handle(t *testing.T) {
	views := &fakeViews{}
	pub := Inline{D: &Dispatcher{Views: views}}
	ctx := context.Background()

	if err := pub.Publish(ctx, Event{Type: ProfileViewed, ProviderID: 3, UserID: 9, At: time.Now()}); err != nil {
		t.Fatalf("profile viewed: %v", err)
	}
	if len(views.got) != 1 || views.got[0] != (recordedView{3, 9}) {
		t.Fatalf("unexpected views: %+v", views.got)
	}

	for _, typ := range []Type{RequestCreated, RequestAccepted, RequestRejected} {
		if err := pub.Publish(ctx, Event{Type: typ, RequestID: "r1"}); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
	}
	if err := pub.Publish(ctx, Event{Type: "bogus"}); err == nil {
		t.Fatalf("expected unknown event type to fail")
	}
}
