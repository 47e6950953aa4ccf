package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rajabrawijaya_backend/internals/features/events/broker"
	"rajabrawijaya_backend/internals/features/events/model"
	"rajabrawijaya_backend/internals/features/events/service"
	"rajabrawijaya_backend/internals/testutil"
)

func TestEmit_PersistDanPublish(t *testing.T) {
	db := testutil.OpenDB(t)
	b := broker.New()
	defer b.CloseAll()
	svc := service.NewEventService(db, b)

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	panitiaID := uuid.New()
	kegiatanID := uuid.New()
	svc.Emit(model.EventCreated, model.EntityAbsensi, panitiaID, kegiatanID,
		map[string]string{"status": "Hadir"})

	// tersimpan di log
	var rows []model.ScanEventModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.EventCreated, rows[0].EventType)
	assert.Positive(t, rows[0].EventId)

	// terdorong ke subscriber
	select {
	case ev := <-sub.Ch:
		assert.Equal(t, rows[0].EventId, ev.EventId)
		assert.Equal(t, panitiaID, ev.EventPanitiaId)
	case <-time.After(time.Second):
		t.Fatal("event tidak sampai ke subscriber")
	}
}

func TestListSince(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEventService(db, broker.New())

	for i := 0; i < 5; i++ {
		svc.Emit(model.EventUpdated, model.EntityAbsensi, uuid.New(), uuid.New(), nil)
	}

	all, err := svc.ListSince(0, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)

	// kursor: hanya event setelah id ke-3
	tail, err := svc.ListSince(all[2].EventId, 100)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Greater(t, tail[0].EventId, all[2].EventId)

	// limit dihormati
	limited, err := svc.ListSince(0, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
