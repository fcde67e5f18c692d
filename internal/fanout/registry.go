package fanout

import (
	"context"
	"errors"
	"sync"

	"auction-engine/utils"

	"github.com/smallnest/chanx"
)

const (
	// DefaultMailboxSize bounds the notices held for a user with no live connection
	DefaultMailboxSize = 16
	queueCapacity      = 8
)

var (
	ErrRegistryClosed    = errors.New("connection registry is closed")
	ErrUnknownConnection = errors.New("unknown connection")
)

// Subscription is one live observer connection. Notifications are queued
// without bound so a slow reader never blocks a broadcast.
type Subscription struct {
	id     string
	userID string
	rooms  map[string]struct{}
	queue  *chanx.UnboundedChan[Notification]
	cancel context.CancelFunc
}

// ID returns the connection ID
func (s *Subscription) ID() string { return s.id }

// Notifications is closed once the connection is disconnected
func (s *Subscription) Notifications() <-chan Notification { return s.queue.Out }

// Registry tracks live connections, the auction rooms they joined and the
// user each one is registered to.
type Registry struct {
	mu          sync.RWMutex
	closed      bool
	mailboxSize int
	conns       map[string]*Subscription            // key: connID
	rooms       map[string]map[string]*Subscription // key: auctionID -> connID
	users       map[string]map[string]*Subscription // key: userID -> connID
	mailbox     map[string][]Notification           // key: userID
}

// NewRegistry creates an empty registry. mailboxSize <= 0 uses DefaultMailboxSize.
func NewRegistry(mailboxSize int) *Registry {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}
	return &Registry{
		mailboxSize: mailboxSize,
		conns:       make(map[string]*Subscription),
		rooms:       make(map[string]map[string]*Subscription),
		users:       make(map[string]map[string]*Subscription),
		mailbox:     make(map[string][]Notification),
	}
}

// Connect opens a new connection that belongs to no room or user yet
func (r *Registry) Connect() (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		id:     utils.GenerateID(),
		rooms:  make(map[string]struct{}),
		queue:  chanx.NewUnboundedChan[Notification](ctx, queueCapacity),
		cancel: cancel,
	}
	r.conns[s.id] = s
	return s, nil
}

// RegisterUser binds a connection to userID and delivers any held notices
func (r *Registry) RegisterUser(connID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.conns[connID]
	if !ok {
		return ErrUnknownConnection
	}
	if s.userID != "" {
		removeMember(r.users, s.userID, connID)
	}
	s.userID = userID
	addMember(r.users, userID, s)

	held := r.mailbox[userID]
	delete(r.mailbox, userID)
	for _, n := range held {
		s.queue.In <- n
	}
	if len(held) > 0 {
		utils.Info("Delivered held notifications", map[string]any{
			"user_id": userID,
			"count":   len(held),
		})
	}
	return nil
}

// Join subscribes a connection to an auction's room
func (r *Registry) Join(connID, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.conns[connID]
	if !ok {
		return ErrUnknownConnection
	}
	s.rooms[auctionID] = struct{}{}
	addMember(r.rooms, auctionID, s)
	return nil
}

// Leave unsubscribes a connection from an auction's room
func (r *Registry) Leave(connID, auctionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.conns[connID]; ok {
		delete(s.rooms, auctionID)
	}
	removeMember(r.rooms, auctionID, connID)
}

// Disconnect removes a connection from every room and closes its channel
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.conns[connID]
	if !ok {
		return
	}
	r.drop(s)
}

// Broadcast queues n for every connection in the auction's room and returns
// how many connections received it
func (r *Registry) Broadcast(auctionID string, n Notification) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0
	}
	for _, s := range r.rooms[auctionID] {
		s.queue.In <- n
	}
	return len(r.rooms[auctionID])
}

// SendToUser queues n for every connection registered to userID
func (r *Registry) SendToUser(userID string, n Notification) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0
	}
	for _, s := range r.users[userID] {
		s.queue.In <- n
	}
	return len(r.users[userID])
}

// Hold keeps n for userID until a connection registers for that user. The
// oldest notice is dropped once the mailbox is full.
func (r *Registry) Hold(userID string, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	box := append(r.mailbox[userID], n)
	if len(box) > r.mailboxSize {
		box = box[len(box)-r.mailboxSize:]
	}
	r.mailbox[userID] = box
}

// Held returns the notices waiting for userID
func (r *Registry) Held(userID string) []Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Notification(nil), r.mailbox[userID]...)
}

// RoomSize returns the number of connections watching an auction
func (r *Registry) RoomSize(auctionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[auctionID])
}

// Close disconnects every connection. Further Connect calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, s := range r.conns {
		r.drop(s)
	}
	clear(r.mailbox)
}

// drop must be called with r.mu held for writing
func (r *Registry) drop(s *Subscription) {
	for auctionID := range s.rooms {
		removeMember(r.rooms, auctionID, s.id)
	}
	if s.userID != "" {
		removeMember(r.users, s.userID, s.id)
	}
	delete(r.conns, s.id)
	s.cancel()
}

func addMember(groups map[string]map[string]*Subscription, key string, s *Subscription) {
	members, ok := groups[key]
	if !ok {
		members = make(map[string]*Subscription)
		groups[key] = members
	}
	members[s.id] = s
}

func removeMember(groups map[string]map[string]*Subscription, key, connID string) {
	members, ok := groups[key]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(groups, key)
	}
}
