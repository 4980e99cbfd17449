package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	e "github.com/microcosm-cc/avatars/errors"
	h "github.com/microcosm-cc/avatars/helpers"
)

// StoreOptions configures a Store. Zero values select the defaults.
type StoreOptions struct {
	// URL is the base URL of the avatar service, the hash is appended to it
	URL string

	// Timeout bounds connecting to and reading from the avatar service
	Timeout time.Duration

	// Fetcher performs the network calls, an HTTPFetcher if nil
	Fetcher Fetcher

	// Scheduler runs background jobs. When nil the store creates its own
	// with Workers workers and closes it in Close.
	Scheduler *Scheduler
	Workers   int

	// Normaliser is applied to every fetched image
	Normaliser ImageNormaliser
}

// Store loads avatars from the avatar service and keeps them in memory.
//
// Every network call a Store makes, synchronous or scheduled, runs while
// holding the store's SchedulingRule, so the avatar service never sees
// overlapping requests from one store. Different stores do not block one
// another.
type Store struct {
	mu          sync.RWMutex
	url         string
	lastRefresh time.Time

	timeout       time.Duration
	avatars       *AvatarCache
	fetcher       Fetcher
	normaliser    ImageNormaliser
	rule          *SchedulingRule
	scheduler     *Scheduler
	ownsScheduler bool
}

// NewStore returns an empty store
func NewStore(opts StoreOptions) (*Store, error) {
	s := &Store{
		timeout:    opts.Timeout,
		avatars:    NewAvatarCache(),
		fetcher:    opts.Fetcher,
		normaliser: opts.Normaliser,
		rule:       NewSchedulingRule(),
		scheduler:  opts.Scheduler,
	}

	if s.timeout <= 0 {
		s.timeout = h.DefaultTimeout
	}

	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher("avatars")
	}

	if s.scheduler == nil {
		s.scheduler = NewScheduler(opts.Workers)
		s.ownsScheduler = true
	}

	url := opts.URL
	if url == "" {
		url = h.DefaultURL
	}
	if err := s.SetURL(url); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreStore returns a store holding the avatars of a snapshot. The
// snapshot URL is used unless opts.URL is set.
func RestoreStore(snapshot *StoreSnapshot, opts StoreOptions) (*Store, error) {
	if snapshot != nil && opts.URL == "" {
		opts.URL = snapshot.URL
	}

	s, err := NewStore(opts)
	if err != nil {
		return nil, err
	}

	if snapshot == nil {
		return s, nil
	}

	s.lastRefresh = snapshot.LastRefresh
	for _, m := range snapshot.Avatars {
		if !s.avatars.Put(m) {
			glog.Warningf("Dropping snapshot avatar with invalid hash %q", m.Hash)
		}
	}

	if glog.V(2) {
		glog.Infof("Restored %d avatars, last refreshed %s", s.avatars.Len(), s.lastRefresh)
	}

	return s, nil
}

// SetURL sets the base URL of the avatar service, a trailing slash is added
// if missing
func (s *Store) SetURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return e.New("models.Store.SetURL", e.InvalidURL, "URL cannot be empty")
	}

	if !strings.HasSuffix(url, "/") {
		url += "/"
	}

	s.mu.Lock()
	s.url = url
	s.mu.Unlock()

	return nil
}

// URL returns the base URL of the avatar service
func (s *Store) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// Timeout returns the network timeout
func (s *Store) Timeout() time.Duration {
	return s.timeout
}

// RefreshTime returns when the last full refresh finished, the zero time if
// the store has never been refreshed
func (s *Store) RefreshTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Len returns the number of cached avatars
func (s *Store) Len() int {
	return s.avatars.Len()
}

// GetHash returns the avatar hash for an email address, "" if there is none
func (s *Store) GetHash(email string) string {
	return h.GetHash(email)
}

// IsValidHash returns true if hash is a well formed avatar hash
func (s *Store) IsValidHash(hash string) bool {
	return h.IsValidHash(hash)
}

// GetAdaptedHash resolves any value to an avatar hash, see GetAdaptedHash
func (s *Store) GetAdaptedHash(v interface{}) string {
	return GetAdaptedHash(v)
}

// ContainsAvatar returns true if an avatar is cached for hash
func (s *Store) ContainsAvatar(hash string) bool {
	return s.avatars.Contains(hash)
}

// GetAvatarByHash returns the cached avatar for hash, or nil
func (s *Store) GetAvatarByHash(hash string) *AvatarType {
	m, ok := s.avatars.Get(hash)
	if !ok {
		return nil
	}
	return &m
}

// GetAvatarByEmail returns the cached avatar for an email address, or nil
func (s *Store) GetAvatarByEmail(email string) *AvatarType {
	return s.GetAvatarByHash(s.GetHash(email))
}

// GetAvatars returns a page of the cached avatars ordered by hash, and the
// number of cached avatars
func (s *Store) GetAvatars(offset int, limit int) ([]AvatarType, int) {
	hashes := s.avatars.Keys()
	total := len(hashes)

	if offset >= total || limit < 1 {
		return []AvatarType{}, total
	}
	hashes = hashes[offset:]
	if len(hashes) > limit {
		hashes = hashes[:limit]
	}

	ems := make([]AvatarType, 0, len(hashes))
	for _, hash := range hashes {
		if m, ok := s.avatars.Get(hash); ok {
			ems = append(ems, m)
		}
	}

	return ems, total
}

// LoadAvatarByHash fetches the avatar for hash, caches it and returns it.
// It returns nil and no error when the hash is invalid or the avatar service
// has no avatar for it; an error means the network call failed.
func (s *Store) LoadAvatarByHash(ctx context.Context, hash string) (*AvatarType, error) {
	if !h.IsValidHash(hash) {
		return nil, nil
	}

	if err := s.rule.Acquire(ctx); err != nil {
		return nil, e.Wrap("models.Store.LoadAvatarByHash", e.Cancelled, err)
	}
	defer s.rule.Release()

	return s.loadAvatarByHash(ctx, hash)
}

// LoadAvatarByEmail is LoadAvatarByHash for the hash of email
func (s *Store) LoadAvatarByEmail(ctx context.Context, email string) (*AvatarType, error) {
	return s.LoadAvatarByHash(ctx, s.GetHash(email))
}

// loadAvatarByHash must be called with the rule held
func (s *Store) loadAvatarByHash(ctx context.Context, hash string) (*AvatarType, error) {
	if !h.IsValidHash(hash) {
		return nil, nil
	}

	result, err := s.fetcher.Fetch(ctx, s.URL(), hash, s.timeout)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return nil, nil
	}

	data, mimeType := result.Bytes, result.MimeType
	if s.normaliser.Enabled() {
		data, mimeType = s.normaliser.Normalise(data, mimeType)
	}

	m := NewAvatar(hash, time.Now(), mimeType, data)
	s.avatars.Put(m)

	return &m, nil
}

// ScheduleLoadAvatarByHash loads the avatar for hash in the background and
// reports the outcome to callback, which may be nil
func (s *Store) ScheduleLoadAvatarByHash(hash string, callback AvatarCallback) *JobHandle {
	var onCancel func(error)
	if callback != nil {
		onCancel = callback.Error
	}

	return s.scheduler.ScheduleTask(
		fmt.Sprintf("Loading avatar %s", hash),
		s.rule,
		func(ctx context.Context) func() {
			m, err := s.loadAvatarByHash(ctx, hash)
			if err != nil && glog.V(2) {
				glog.Infof("loadAvatarByHash(%s) %+v", hash, err)
			}
			if callback == nil {
				return nil
			}

			// The callback runs once the rule is released, it may load
			// from this store itself
			return func() {
				if err != nil {
					callback.Error(err)
					return
				}
				if m != nil {
					callback.Loaded(*m)
				}
			}
		},
		onCancel,
	)
}

// ScheduleLoadAvatarByEmail is ScheduleLoadAvatarByHash for the hash of email
func (s *Store) ScheduleLoadAvatarByEmail(email string, callback AvatarCallback) *JobHandle {
	return s.ScheduleLoadAvatarByHash(s.GetHash(email), callback)
}

// Refresh fetches every cached avatar again. Individual failures are logged
// and leave the cached avatar in place. The refresh time is updated once all
// avatars were visited; an error is only returned when ctx is done first.
// monitor may be nil.
func (s *Store) Refresh(ctx context.Context, monitor ProgressMonitor) error {
	if err := s.rule.Acquire(ctx); err != nil {
		return e.Wrap("models.Store.Refresh", e.Cancelled, err)
	}
	defer s.rule.Release()

	return s.refresh(ctx, monitor)
}

// refresh must be called with the rule held
func (s *Store) refresh(ctx context.Context, monitor ProgressMonitor) error {
	if monitor == nil {
		monitor = NullProgressMonitor{}
	}

	// Avatars added while refreshing are fresh already
	hashes := s.avatars.Keys()

	monitor.BeginTask("Refreshing avatars", len(hashes))
	defer monitor.Done()

	for _, hash := range hashes {
		if err := ctx.Err(); err != nil {
			return e.Wrap("models.Store.Refresh", e.Cancelled, err)
		}

		monitor.SetTaskName(fmt.Sprintf("Loading avatar %s", hash))

		_, err := s.loadAvatarByHash(ctx, hash)
		if err != nil {
			glog.Warningf("Refresh: loadAvatarByHash(%s) %+v", hash, err)
		}

		monitor.Worked(1)
	}

	// A fetch cut short by cancellation does not count as refreshed
	if err := ctx.Err(); err != nil {
		return e.Wrap("models.Store.Refresh", e.Cancelled, err)
	}

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	return nil
}

// ScheduleRefresh runs Refresh in the background
func (s *Store) ScheduleRefresh() *JobHandle {
	return s.scheduler.Schedule(
		"Refreshing avatars",
		s.rule,
		func(ctx context.Context) {
			err := s.refresh(ctx, &LogProgressMonitor{})
			if err != nil {
				glog.Warningf("Refresh %+v", err)
			}
		},
		nil,
	)
}

// Snapshot returns the persistent form of the store
func (s *Store) Snapshot() *StoreSnapshot {
	s.mu.RLock()
	url, lastRefresh := s.url, s.lastRefresh
	s.mu.RUnlock()

	return &StoreSnapshot{
		URL:         url,
		LastRefresh: lastRefresh,
		Avatars:     s.avatars.Values(),
	}
}

// Wait blocks until all scheduled jobs have completed
func (s *Store) Wait() {
	s.scheduler.Wait()
}

// Close stops background jobs if the store owns its scheduler and releases
// idle network connections
func (s *Store) Close() {
	if s.ownsScheduler {
		s.scheduler.Close()
	}

	if f, ok := s.fetcher.(*HTTPFetcher); ok {
		f.CloseIdleConnections()
	}
}
