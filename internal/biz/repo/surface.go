package repo

import (
	"context"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

// Surface is the external chat room being observed.
// Poll returns a snapshot of currently visible events in display order;
// there is no cursor and no delivery guarantee, so the batch may
// re-include already-processed events. Reply is best-effort.
type Surface interface {
	Poll(ctx context.Context) ([]domain.Event, error)
	Reply(ctx context.Context, text string) error
}
