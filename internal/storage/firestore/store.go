package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// FirestoreStore implements dispatch.Store using Google Cloud Firestore.
// Layout: centers/{app} holds settings and badge, with pending/{id} and
// delivered/{auto} sub-collections.
type FirestoreStore struct {
	client *firestore.Client
	app    string
}

var _ dispatch.Store = (*FirestoreStore)(nil)

func NewFirestoreStore(client *firestore.Client, app string) *FirestoreStore {
	return &FirestoreStore{client: client, app: app}
}

// centerRecord is the internal DB representation of the center document.
type centerRecord struct {
	AuthorizationStatus string    `firestore:"authorization_status"`
	AllowAlert          bool      `firestore:"allow_alert"`
	AllowSound          bool      `firestore:"allow_sound"`
	AllowBadge          bool      `firestore:"allow_badge"`
	BadgeCount          int64     `firestore:"badge_count"`
	UpdatedAt           time.Time `firestore:"updated_at"`
}

type requestRecord struct {
	Identifier     string            `firestore:"identifier"`
	Title          string            `firestore:"title"`
	Body           string            `firestore:"body"`
	Sound          bool              `firestore:"sound"`
	UserInfo       map[string]string `firestore:"user_info,omitempty"`
	DeliverAfterMS int64             `firestore:"deliver_after_ms"`
	Repeats        bool              `firestore:"repeats"`
}

type pendingRecord struct {
	Request     requestRecord `firestore:"request"`
	ScheduledAt time.Time     `firestore:"scheduled_at"`
	FireAt      time.Time     `firestore:"fire_at"`
}

type deliveredRecord struct {
	Request     requestRecord `firestore:"request"`
	DeliveredAt time.Time     `firestore:"delivered_at"`
}

// --- Settings & badge ---

func (s *FirestoreStore) LoadSettings(ctx context.Context) (notification.Settings, error) {
	rec, err := s.loadCenter(ctx)
	if err != nil {
		return notification.Settings{}, err
	}
	st, err := notification.ParseAuthorizationStatus(rec.AuthorizationStatus)
	if err != nil {
		return notification.Settings{}, err
	}
	return notification.Settings{
		AuthorizationStatus: st,
		Options:             notification.AuthorizationOptions{Alert: rec.AllowAlert, Sound: rec.AllowSound, Badge: rec.AllowBadge},
	}, nil
}

func (s *FirestoreStore) SaveSettings(ctx context.Context, settings notification.Settings) error {
	_, err := s.centerRef().Set(ctx, map[string]interface{}{
		"authorization_status": settings.AuthorizationStatus.String(),
		"allow_alert":          settings.Options.Alert,
		"allow_sound":          settings.Options.Sound,
		"allow_badge":          settings.Options.Badge,
		"updated_at":           time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *FirestoreStore) LoadBadge(ctx context.Context) (int, error) {
	rec, err := s.loadCenter(ctx)
	if err != nil {
		return 0, err
	}
	return int(rec.BadgeCount), nil
}

func (s *FirestoreStore) SaveBadge(ctx context.Context, n int) error {
	_, err := s.centerRef().Set(ctx, map[string]interface{}{
		"badge_count": int64(n),
		"updated_at":  time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save badge: %w", err)
	}
	return nil
}

// --- Pending ---

func (s *FirestoreStore) PutPending(ctx context.Context, p notification.Pending) error {
	rec := pendingRecord{
		Request:     toRequestRecord(p.Request),
		ScheduledAt: p.ScheduledAt,
		FireAt:      p.FireAt,
	}
	if _, err := s.pendingCollection().Doc(p.Request.Identifier).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to save pending %s: %w", p.Request.Identifier, err)
	}
	return nil
}

func (s *FirestoreStore) RemovePending(ctx context.Context, identifiers []string) error {
	for _, id := range identifiers {
		// Deleting a missing document is not an error in Firestore.
		if _, err := s.pendingCollection().Doc(id).Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete pending %s: %w", id, err)
		}
	}
	return nil
}

func (s *FirestoreStore) RemoveAllPending(ctx context.Context) error {
	return s.deleteAll(ctx, s.pendingCollection())
}

func (s *FirestoreStore) ListPending(ctx context.Context) ([]notification.Pending, error) {
	iter := s.pendingCollection().OrderBy("fire_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := make([]notification.Pending, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}
		var rec pendingRecord
		if err := doc.DataTo(&rec); err != nil {
			// Skip corrupt rows rather than wedge the center.
			continue
		}
		out = append(out, notification.Pending{
			Request:     rec.Request.toRequest(),
			ScheduledAt: rec.ScheduledAt,
			FireAt:      rec.FireAt,
		})
	}
	return out, nil
}

// --- Delivered ---

func (s *FirestoreStore) PutDelivered(ctx context.Context, d notification.Delivered) error {
	rec := deliveredRecord{Request: toRequestRecord(d.Request), DeliveredAt: d.DeliveredAt}
	if _, _, err := s.deliveredCollection().Add(ctx, rec); err != nil {
		return fmt.Errorf("failed to save delivered %s: %w", d.Request.Identifier, err)
	}
	return nil
}

func (s *FirestoreStore) ListDelivered(ctx context.Context) ([]notification.Delivered, error) {
	iter := s.deliveredCollection().OrderBy("delivered_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := make([]notification.Delivered, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}
		var rec deliveredRecord
		if err := doc.DataTo(&rec); err != nil {
			continue
		}
		out = append(out, notification.Delivered{Request: rec.Request.toRequest(), DeliveredAt: rec.DeliveredAt})
	}
	return out, nil
}

func (s *FirestoreStore) RemoveAllDelivered(ctx context.Context) error {
	return s.deleteAll(ctx, s.deliveredCollection())
}

// --- Helpers ---

func (s *FirestoreStore) loadCenter(ctx context.Context) (centerRecord, error) {
	var rec centerRecord
	doc, err := s.centerRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return centerRecord{AuthorizationStatus: notification.StatusNotDetermined.String()}, nil
		}
		return rec, fmt.Errorf("failed to load center: %w", err)
	}
	if err := doc.DataTo(&rec); err != nil {
		return rec, fmt.Errorf("failed to decode center: %w", err)
	}
	return rec, nil
}

func (s *FirestoreStore) deleteAll(ctx context.Context, col *firestore.CollectionRef) error {
	iter := col.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("firestore iteration failed: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete %s: %w", doc.Ref.ID, err)
		}
	}
}

// centerRef: centers/{app}
func (s *FirestoreStore) centerRef() *firestore.DocumentRef {
	return s.client.Collection("centers").Doc(s.app)
}

func (s *FirestoreStore) pendingCollection() *firestore.CollectionRef {
	return s.centerRef().Collection("pending")
}

func (s *FirestoreStore) deliveredCollection() *firestore.CollectionRef {
	return s.centerRef().Collection("delivered")
}

func toRequestRecord(r notification.Request) requestRecord {
	return requestRecord{
		Identifier:     r.Identifier,
		Title:          r.Content.Title,
		Body:           r.Content.Body,
		Sound:          r.Content.Sound,
		UserInfo:       r.Content.UserInfo,
		DeliverAfterMS: r.Trigger.DeliverAfter.Milliseconds(),
		Repeats:        r.Trigger.Repeats,
	}
}

func (r requestRecord) toRequest() notification.Request {
	return notification.Request{
		Identifier: r.Identifier,
		Content: notification.Content{
			Title:    r.Title,
			Body:     r.Body,
			Sound:    r.Sound,
			UserInfo: r.UserInfo,
		},
		Trigger: notification.Trigger{
			DeliverAfter: time.Duration(r.DeliverAfterMS) * time.Millisecond,
			Repeats:      r.Repeats,
		},
	}
}
