package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

var ErrRowUnknown = errors.New("baris tidak ditemukan di state lokal")

type mutationError struct {
	Status  int
	Message string
}

func (e *mutationError) Error() string {
	return fmt.Sprintf("server menolak (status %d): %s", e.Status, e.Message)
}

type updatedEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Absensi struct {
			AbsensiId uuid.UUID  `json:"absensi_id"`
			Status    string     `json:"status"`
			Waktu     *time.Time `json:"waktu"`
			Metode    string     `json:"metode"`
		} `json:"absensi"`
	} `json:"data"`
}

// UpdateStatus menerapkan status baru secara optimis: baris lokal diubah
// dulu supaya UI langsung merespons, baru PATCH ke server. Kalau server
// menolak, baris dikembalikan ke nilai sebelumnya. Respons sukses dipakai
// sebagai konfirmasi (waktu/metode dari server, bukan tebakan lokal).
func (c *Client) UpdateStatus(ctx context.Context, panitiaID uuid.UUID, status string, keterangan *string) error {
	c.mu.Lock()
	before, ok := c.rows[panitiaID]
	if !ok || before.AbsensiId == uuid.Nil {
		c.mu.Unlock()
		return ErrRowUnknown
	}
	optimistic := before
	optimistic.Status = status
	optimistic.Metode = "Manual"
	if status != "Hadir" {
		optimistic.Waktu = nil
	}
	c.rows[panitiaID] = optimistic
	c.mu.Unlock()

	rollback := func() {
		c.mu.Lock()
		c.rows[panitiaID] = before
		c.mu.Unlock()
	}

	body := map[string]interface{}{"status": status, "metode": "Manual"}
	if keterangan != nil {
		body["keterangan"] = *keterangan
	}
	raw, err := sonic.Marshal(body)
	if err != nil {
		rollback()
		return err
	}

	u := fmt.Sprintf("%s/api/v1/absensi/%s", c.cfg.BaseURL, before.AbsensiId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(raw))
	if err != nil {
		rollback()
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		rollback()
		return err
	}
	defer resp.Body.Close()
	respRaw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		rollback()
		return &mutationError{Status: resp.StatusCode, Message: extractMessage(respRaw)}
	}

	// konfirmasi dari server
	var env updatedEnvelope
	if err := sonic.Unmarshal(respRaw, &env); err == nil && env.Data.Absensi.AbsensiId != uuid.Nil {
		c.mu.Lock()
		row := c.rows[panitiaID]
		row.Status = env.Data.Absensi.Status
		row.Waktu = env.Data.Absensi.Waktu
		row.Metode = env.Data.Absensi.Metode
		c.rows[panitiaID] = row
		c.mu.Unlock()
	}
	return nil
}

// Delete menghapus baris secara optimis; gagal berarti baris dikembalikan.
func (c *Client) Delete(ctx context.Context, panitiaID uuid.UUID) error {
	c.mu.Lock()
	before, ok := c.rows[panitiaID]
	if !ok || before.AbsensiId == uuid.Nil {
		c.mu.Unlock()
		return ErrRowUnknown
	}
	delete(c.rows, panitiaID)
	c.mu.Unlock()

	rollback := func() {
		c.mu.Lock()
		c.rows[panitiaID] = before
		c.mu.Unlock()
	}

	u := fmt.Sprintf("%s/api/v1/absensi/%s", c.cfg.BaseURL, before.AbsensiId)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		rollback()
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		rollback()
		return err
	}
	defer resp.Body.Close()
	respRaw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		rollback()
		return &mutationError{Status: resp.StatusCode, Message: extractMessage(respRaw)}
	}
	return nil
}

func extractMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body.Message
}
