// Package dashboard adalah klien Go untuk layar pemantauan absensi.
// Sumber data utama SSE; kalau stream putus, klien turun ke polling
// since-id, dan kalau endpoint event ikut tumbang, ke diff snapshot.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ConnectionState string

const (
	StateStream  ConnectionState = "stream"
	StatePolling ConnectionState = "polling"
	StateOffline ConnectionState = "offline"
)

// Event mewakili satu baris scan_events dari server.
type Event struct {
	EventId         int64     `json:"event_id"`
	EventType       string    `json:"event_type"`
	EventEntity     string    `json:"event_entity"`
	EventPanitiaId  uuid.UUID `json:"event_panitia_id"`
	EventKegiatanId uuid.UUID `json:"event_kegiatan_id"`
	EventPayload    json.RawMessage `json:"event_payload"`
	EventCreatedAt  time.Time `json:"event_created_at"`
}

// Row adalah satu baris tabel dashboard (hasil join absensi + panitia).
type Row struct {
	AbsensiId   uuid.UUID  `json:"absensi_id"`
	PanitiaId   uuid.UUID  `json:"panitia_id"`
	NamaLengkap string     `json:"nama_lengkap"`
	Nim         string     `json:"nim"`
	Divisi      string     `json:"divisi"`
	Status      string     `json:"status"`
	Waktu       *time.Time `json:"waktu,omitempty"`
	Metode      string     `json:"metode"`
}

type Config struct {
	BaseURL     string
	Token       string
	KegiatanId  uuid.UUID
	RangkaianId *uuid.UUID
	Tanggal     string // YYYY-MM-DD

	// Interval polling fallback; default 5 detik.
	PollInterval time.Duration
	HTTPClient   *http.Client
}

type Client struct {
	cfg  Config
	http *http.Client

	// Callback UI. Boleh nil; dipanggil dari goroutine internal.
	OnNewScan         func(Event)
	OnStatusUpdate    func(Event)
	OnConnectionState func(ConnectionState)

	mu          sync.Mutex
	lastEventID int64
	rows        map[uuid.UUID]Row
	state       ConnectionState

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:   cfg,
		http:  httpClient,
		rows:  map[uuid.UUID]Row{},
		state: StateOffline,
	}
}

// Start memulai loop sinkronisasi di background. Aman dipanggil ulang
// setelah Stop (mis. perangkat kembali online).
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(runCtx)
	}()
}

// Stop menghentikan loop dan menunggu goroutine selesai. State lokal
// (rows + kursor event) dipertahankan untuk resume.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.setState(StateOffline)
}

// Rows mengembalikan salinan state tabel saat ini.
func (c *Client) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, 0, len(c.rows))
	for _, r := range c.rows {
		out = append(out, r)
	}
	return out
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) LastEventID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	cb := c.OnConnectionState
	c.mu.Unlock()
	if changed && cb != nil {
		cb(s)
	}
}

func (c *Client) setLastEventID(id int64) {
	c.mu.Lock()
	if id > c.lastEventID {
		c.lastEventID = id
	}
	c.mu.Unlock()
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

// dispatch meneruskan event server ke callback yang tepat dan menjaga
// state lokal tetap sinkron (baseline untuk diff snapshot dan rollback).
func (c *Client) dispatch(ev Event) {
	c.setLastEventID(ev.EventId)
	c.absorb(ev)

	c.mu.Lock()
	newScan := ev.EventType == "created"
	cbNew := c.OnNewScan
	cbUpdate := c.OnStatusUpdate
	c.mu.Unlock()

	if newScan {
		if cbNew != nil {
			cbNew(ev)
		}
		return
	}
	if cbUpdate != nil {
		cbUpdate(ev)
	}
}

// absorb menempelkan payload event absensi ke baris lokal.
func (c *Client) absorb(ev Event) {
	if ev.EventEntity != "absensi" || len(ev.EventPayload) == 0 {
		return
	}
	var patch struct {
		AbsensiId uuid.UUID  `json:"absensi_id"`
		Status    string     `json:"status"`
		Waktu     *time.Time `json:"waktu"`
		Metode    string     `json:"metode"`
	}
	if err := json.Unmarshal(ev.EventPayload, &patch); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[ev.EventPanitiaId]
	if !ok {
		row = Row{PanitiaId: ev.EventPanitiaId}
	}
	if patch.AbsensiId != uuid.Nil {
		row.AbsensiId = patch.AbsensiId
	}
	if ev.EventType == "deleted" {
		delete(c.rows, ev.EventPanitiaId)
		return
	}
	if patch.Status != "" {
		row.Status = patch.Status
	}
	row.Waktu = patch.Waktu
	if patch.Metode != "" {
		row.Metode = patch.Metode
	}
	c.rows[ev.EventPanitiaId] = row
}
