package mutation

import (
	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/models"
)

// resolution is what became of a placeholder.
type resolution struct {
	id        models.SetID
	abandoned bool
}

// reconciler maps placeholders to the authoritative ids the server assigned
// and rewrites queued references. Callers hold the executor lock.
type reconciler struct {
	aliases map[models.SetID]resolution
}

func newReconciler() *reconciler {
	return &reconciler{aliases: make(map[models.SetID]resolution)}
}

// confirm swaps the placeholder for the authoritative set in base and
// retargets every queued record that still addresses the placeholder.
func (r *reconciler) confirm(base cache.Collection, placeholder models.SetID, authoritative models.Set, queued []*record) cache.Collection {
	r.aliases[placeholder] = resolution{id: authoritative.ID}
	for _, rec := range queued {
		if rec.target == placeholder {
			rec.target = authoritative.ID
		}
	}
	next, ok := base.Reconcile(placeholder, authoritative)
	if !ok {
		// placeholder отсутствует в базе: вставляем подтвержденную запись
		// только если ее еще нет, очередь удалений применится поверх
		next = base.Prepend(authoritative)
	}
	return next
}

// abandon records that the placeholder will never get an authoritative id.
func (r *reconciler) abandon(placeholder models.SetID) {
	r.aliases[placeholder] = resolution{abandoned: true}
}

// forget drops the alias of placeholder once nothing can address it anymore.
func (r *reconciler) forget(placeholder models.SetID) {
	delete(r.aliases, placeholder)
}

// resolve returns the effective id for target. known is false for
// placeholders that are neither confirmed nor abandoned.
func (r *reconciler) resolve(target models.SetID) (res resolution, known bool) {
	if !target.IsPlaceholder() {
		return resolution{id: target}, true
	}
	res, known = r.aliases[target]
	return res, known
}
