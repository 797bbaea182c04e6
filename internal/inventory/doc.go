// Package inventory implements the rack and device model and the
// transactional write pipeline around it.
//
// Reads go through Repository; writes go through Service, which runs
// each create/delete as a single SQLite transaction covering the
// inventory change and its success audit entry. Connected clients are
// notified through a Publisher strictly after commit.
//
// Failure handling:
//   - Input validation failures return FieldErrors and touch nothing
//   - Storage failures roll back, write a compensating failure entry
//     on the pool, and surface as ErrStorageFailed
//   - Deleting an unknown device returns ErrDeviceNotFound with no
//     audit entry and no event
package inventory
