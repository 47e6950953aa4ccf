package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:    baseURL,
		Token:      "token-uji",
		KegiatanId: uuid.New(),
		Tanggal:    "2026-08-12",
	})
}

func seedRow(c *Client, status string) Row {
	row := Row{
		AbsensiId:   uuid.New(),
		PanitiaId:   uuid.New(),
		NamaLengkap: "Panitia Uji",
		Nim:         "NIM200",
		Divisi:      "Acara",
		Status:      status,
		Metode:      "Manual",
	}
	c.rows[row.PanitiaId] = row
	return row
}

func TestApplySnapshot_SatuKehadiranSatuNewScan(t *testing.T) {
	c := newTestClient("http://unused")
	a := seedRow(c, "Tidak Hadir")
	b := seedRow(c, "Tidak Hadir")

	var newScans, updates []Event
	c.OnNewScan = func(ev Event) { newScans = append(newScans, ev) }
	c.OnStatusUpdate = func(ev Event) { updates = append(updates, ev) }

	now := time.Now()
	hadirA := a
	hadirA.Status = "Hadir"
	hadirA.Waktu = &now
	hadirA.Metode = "QR Code"

	// C adalah baris hasil pra-populasi: baru muncul tapi belum hadir
	barisBaru := Row{AbsensiId: uuid.New(), PanitiaId: uuid.New(), Status: "Tidak Hadir"}

	c.applySnapshot([]Row{hadirA, b, barisBaru})

	require.Len(t, newScans, 1, "satu kehadiran baru = tepat satu event new-scan")
	assert.Equal(t, a.PanitiaId, newScans[0].EventPanitiaId)
	assert.Empty(t, updates, "baris pra-populasi bukan perubahan")
}

func TestApplySnapshot_SnapshotUlangTanpaPerubahanDiam(t *testing.T) {
	c := newTestClient("http://unused")
	a := seedRow(c, "Hadir")

	called := 0
	c.OnNewScan = func(Event) { called++ }
	c.OnStatusUpdate = func(Event) { called++ }

	c.applySnapshot([]Row{a})
	assert.Zero(t, called)
}

func TestApplySnapshot_KoreksiStatusJadiStatusUpdate(t *testing.T) {
	c := newTestClient("http://unused")
	a := seedRow(c, "Hadir")

	var newScans, updates []Event
	c.OnNewScan = func(ev Event) { newScans = append(newScans, ev) }
	c.OnStatusUpdate = func(ev Event) { updates = append(updates, ev) }

	izin := a
	izin.Status = "Izin"
	izin.Waktu = nil
	c.applySnapshot([]Row{izin})

	assert.Empty(t, newScans)
	require.Len(t, updates, 1)
	assert.Equal(t, a.PanitiaId, updates[0].EventPanitiaId)
}

func TestDispatch_KursorMonotonDanRowsTersinkron(t *testing.T) {
	c := newTestClient("http://unused")
	a := seedRow(c, "Tidak Hadir")

	var newScans int
	c.OnNewScan = func(Event) { newScans++ }

	now := time.Now()
	payload := []byte(`{"absensi_id":"` + a.AbsensiId.String() + `","status":"Hadir","metode":"QR Code","waktu":"` + now.Format(time.RFC3339Nano) + `"}`)

	c.dispatch(Event{
		EventId:        7,
		EventType:      "created",
		EventEntity:    "absensi",
		EventPanitiaId: a.PanitiaId,
		EventPayload:   payload,
	})

	assert.Equal(t, 1, newScans)
	assert.EqualValues(t, 7, c.LastEventID())
	assert.Equal(t, "Hadir", c.rows[a.PanitiaId].Status)

	// event lama (id lebih kecil) tidak memundurkan kursor
	c.dispatch(Event{EventId: 3, EventType: "updated", EventEntity: "absensi", EventPanitiaId: a.PanitiaId})
	assert.EqualValues(t, 7, c.LastEventID())
}

func TestUpdateStatus_RollbackSaatServerMenolak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Gagal update absensi"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	a := seedRow(c, "Hadir")

	err := c.UpdateStatus(context.Background(), a.PanitiaId, "Izin", nil)
	require.Error(t, err)
	assert.Equal(t, "Hadir", c.rows[a.PanitiaId].Status, "status kembali ke nilai sebelum optimis")
}

func TestUpdateStatus_KonfirmasiDariServer(t *testing.T) {
	waktu := time.Date(2026, 8, 12, 7, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "Bearer token-uji", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Absensi berhasil diupdate","data":{"absensi":{"absensi_id":"` +
			r.URL.Path[len("/api/v1/absensi/"):] + `","status":"Hadir","metode":"Manual","waktu":"` +
			waktu.Format(time.RFC3339) + `"}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	a := seedRow(c, "Tidak Hadir")

	require.NoError(t, c.UpdateStatus(context.Background(), a.PanitiaId, "Hadir", nil))
	got := c.rows[a.PanitiaId]
	assert.Equal(t, "Hadir", got.Status)
	require.NotNil(t, got.Waktu)
	assert.True(t, got.Waktu.Equal(waktu), "waktu dari server, bukan tebakan lokal")
}

func TestDelete_RollbackSaatGagal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"data absensi tidak ditemukan"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	a := seedRow(c, "Hadir")

	err := c.Delete(context.Background(), a.PanitiaId)
	require.Error(t, err)
	_, masihAda := c.rows[a.PanitiaId]
	assert.True(t, masihAda, "baris dikembalikan setelah server menolak")
}

func TestDelete_Sukses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"Absensi berhasil dihapus"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	a := seedRow(c, "Hadir")

	require.NoError(t, c.Delete(context.Background(), a.PanitiaId))
	_, masihAda := c.rows[a.PanitiaId]
	assert.False(t, masihAda)
}

func TestUpdateStatus_BarisTidakDikenal(t *testing.T) {
	c := newTestClient("http://unused")
	err := c.UpdateStatus(context.Background(), uuid.New(), "Hadir", nil)
	assert.ErrorIs(t, err, ErrRowUnknown)
}
