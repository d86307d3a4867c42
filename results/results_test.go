package results

import (
	"context"
	"testing"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/eventfeed"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRecorder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("records eliminations", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		rec := New(mt.DB)
		err := rec.Publish(context.Background(), eventfeed.Event{
			Type:       eventfeed.TypeEliminated,
			PlayerID:   "p2",
			KillerID:   "p1",
			KillerName: "alice",
			Score:      12,
		})
		if err != nil {
			mt.Fatalf("Publish: %v", err)
		}
		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "insert" {
			mt.Fatalf("expected an insert command, got %+v", started)
		}
	})

	mt.Run("skips other events", func(mt *mtest.T) {
		rec := New(mt.DB)
		if err := rec.Publish(context.Background(), eventfeed.Event{Type: eventfeed.TypeJoined}); err != nil {
			mt.Fatalf("Publish: %v", err)
		}
		if started := mt.GetStartedEvent(); started != nil {
			mt.Fatalf("unexpected command %s", started.CommandName)
		}
	})

	mt.Run("reports write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		rec := New(mt.DB)
		if err := rec.Publish(context.Background(), eventfeed.Event{Type: eventfeed.TypeLeft}); err == nil {
			mt.Fatalf("expected write error")
		}
	})

	mt.Run("ping", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		if err := New(mt.DB).Ping(context.Background()); err != nil {
			mt.Fatalf("Ping: %v", err)
		}
	})
}
