package loaders

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

const batchWait = 2 * time.Millisecond

// Loaders contains the per-request dataloaders
type Loaders struct {
	StudentLoader *dataloader.Loader[string, *entities.Student]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(studentRepo repositories.StudentRepository) *Loaders {
	return &Loaders{
		StudentLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Student] {
			results := make([]*dataloader.Result[*entities.Student], len(keys))
			students, err := studentRepo.GetByIDs(ctx, keys)

			studentMap := make(map[string]*entities.Student, len(students))
			if err == nil {
				for _, s := range students {
					studentMap[s.ID] = s
				}
			}

			// A missing student resolves to nil; the record then shows "N/A".
			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Student]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Student]{Data: studentMap[key]}
				}
			}
			return results
		}, dataloader.WithWait[string, *entities.Student](batchWait)),
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request so cached lookups
// never outlive the request.
func Middleware(studentRepo repositories.StudentRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(studentRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
