package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

var errStreamClosed = errors.New("stream ditutup server")

// run adalah loop utama: SSE dulu, turun ke polling kalau gagal.
// Reconnect pakai exponential backoff; begitu SSE hidup lagi polling berhenti.
func (c *Client) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // coba terus sampai Stop

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.streamOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// stream gagal; susul event via polling sambil menunggu retry
			c.setState(StatePolling)
			wait := bo.NextBackOff()
			c.pollUntil(ctx, wait)
		} else {
			bo.Reset()
		}
	}
}

/* ===================== SSE ===================== */

func (c *Client) streamOnce(ctx context.Context) error {
	u := c.cfg.BaseURL + "/api/v1/events/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/event-stream")
	if last := c.LastEventID(); last > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatInt(last, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream status %d", resp.StatusCode)
	}

	// koneksi hidup; susul dulu event yang terlewat selama putus
	_ = c.pollOnce(ctx)
	c.setState(StateStream)

	return c.readEvents(resp.Body)
}

func (c *Client) readEvents(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				var ev Event
				if err := sonic.UnmarshalString(data.String(), &ev); err == nil {
					c.dispatch(ev)
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// heartbeat, abaikan
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errStreamClosed
}

/* ===================== POLLING ===================== */

// pollUntil menjalankan polling since-id selama jendela waktu tertentu,
// lalu kembali ke percobaan SSE.
func (c *Client) pollUntil(ctx context.Context, window time.Duration) {
	deadline := time.Now().Add(window)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.pollOnce(ctx); err != nil {
				// endpoint event ikut tumbang; coba rekonsiliasi penuh
				if err := c.refreshSnapshot(ctx); err != nil {
					c.setState(StateOffline)
				}
			}
		}
	}
}

type eventEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Events []Event `json:"events"`
		LastId int64   `json:"last_id"`
	} `json:"data"`
}

func (c *Client) pollOnce(ctx context.Context) error {
	u := fmt.Sprintf("%s/api/v1/events?after_id=%d", c.cfg.BaseURL, c.LastEventID())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("events status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env eventEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return err
	}
	for _, ev := range env.Data.Events {
		c.dispatch(ev)
	}
	return nil
}

/* ===================== SNAPSHOT DIFF ===================== */

type listEnvelope struct {
	Success bool  `json:"success"`
	Data    []Row `json:"data"`
}

// refreshSnapshot menarik seluruh tabel dan menurunkan event sintetis
// dari selisih dengan state lokal. Satu kehadiran baru menghasilkan
// tepat satu event new-scan, apa pun jalur datanya.
func (c *Client) refreshSnapshot(ctx context.Context) error {
	params := url.Values{}
	params.Set("kegiatan_id", c.cfg.KegiatanId.String())
	params.Set("tanggal", c.cfg.Tanggal)
	params.Set("per_page", "200")
	if c.cfg.RangkaianId != nil {
		params.Set("rangkaian_id", c.cfg.RangkaianId.String())
	}

	var all []Row
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))
		u := c.cfg.BaseURL + "/api/v1/absensi?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		c.authorize(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("absensi status %d", resp.StatusCode)
		}
		var env listEnvelope
		if err := sonic.Unmarshal(raw, &env); err != nil {
			return err
		}
		all = append(all, env.Data...)
		if len(env.Data) < 200 {
			break
		}
	}

	c.applySnapshot(all)
	return nil
}

// applySnapshot membandingkan snapshot server dengan state lokal dan
// menurunkan event sintetis untuk tiap perubahan nyata. Baris baru
// berstatus "Tidak Hadir" bukan perubahan (hasil pra-populasi).
func (c *Client) applySnapshot(rows []Row) {
	c.mu.Lock()
	prev := c.rows
	next := make(map[uuid.UUID]Row, len(rows))
	for _, r := range rows {
		next[r.PanitiaId] = r
	}
	c.rows = next
	cbNew := c.OnNewScan
	cbUpdate := c.OnStatusUpdate
	c.mu.Unlock()

	for id, now := range next {
		before, existed := prev[id]
		if existed && before.Status == now.Status {
			continue
		}
		ev := syntheticEvent(c.cfg.KegiatanId, now)
		switch {
		case now.Status == "Hadir" && (!existed || before.Status == "Tidak Hadir"):
			if cbNew != nil {
				cbNew(ev)
			}
		case existed:
			if cbUpdate != nil {
				cbUpdate(ev)
			}
		}
	}
}

// syntheticEvent membungkus baris snapshot menjadi Event tanpa id
// (tidak menggeser kursor since-id).
func syntheticEvent(kegiatanID uuid.UUID, row Row) Event {
	payload, _ := sonic.Marshal(row)
	evType := "updated"
	if row.Status == "Hadir" {
		evType = "created"
	}
	return Event{
		EventType:       evType,
		EventEntity:     "absensi",
		EventPanitiaId:  row.PanitiaId,
		EventKegiatanId: kegiatanID,
		EventPayload:    payload,
		EventCreatedAt:  time.Now(),
	}
}
