package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zunayedTheCreator/property-prospect-server/internal/cache"
	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// PurchaseNotifier is told about every purchase request whose status changed.
// Implementations must not block the caller for long; failures are theirs to log.
type PurchaseNotifier interface {
	PurchaseStatusChanged(ctx context.Context, pr models.PurchaseRequest)
}

// AcceptResult is the joint outcome of accepting one request and rejecting its siblings.
type AcceptResult struct {
	Accepted WriteCount `json:"accepted"`
	Rejected WriteCount `json:"rejected"`
}

// BoughtResult is the outcome of MarkBought.
type BoughtResult struct {
	Bought   WriteCount `json:"bought"`
	Rejected WriteCount `json:"rejected"`
}

// IPurchaseLedger owns purchase requests and their status transitions.
type IPurchaseLedger interface {
	Create(ctx context.Context, caller string, pr *models.PurchaseRequest) (*models.PurchaseRequest, error)
	ListAll(ctx context.Context) ([]models.PurchaseRequest, error)
	Get(ctx context.Context, id string) (*models.PurchaseRequest, error)
	ListByAgent(ctx context.Context, agentEmail string) ([]models.PurchaseRequest, error)
	Accept(ctx context.Context, caller, id, listingID string) (*AcceptResult, error)
	Reject(ctx context.Context, caller, id string) (WriteCount, error)
	MarkBought(ctx context.Context, id, paymentRef string) (*BoughtResult, error)
	PurgeByAgent(ctx context.Context, agentEmail string) (int64, error)
}

// ListingFinder resolves the property a purchase request points at.
// IPropertyService satisfies it.
type ListingFinder interface {
	FindByID(ctx context.Context, id string) (*models.Property, error)
}

type purchaseLedger struct {
	store    PurchaseRequestStore
	listings ListingFinder
	locker   cache.KeyedLocker
	notifier PurchaseNotifier
}

// NewPurchaseLedger creates the ledger. A nil locker falls back to an in-process
// one; a nil notifier drops notifications.
func NewPurchaseLedger(store PurchaseRequestStore, listings ListingFinder, locker cache.KeyedLocker, notifier PurchaseNotifier) IPurchaseLedger {
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	return &purchaseLedger{store: store, listings: listings, locker: locker, notifier: notifier}
}

func listingLockKey(listingID string) string {
	return "listing:" + listingID
}

func (l *purchaseLedger) notify(ctx context.Context, prs ...models.PurchaseRequest) {
	if l.notifier == nil {
		return
	}
	for _, pr := range prs {
		l.notifier.PurchaseStatusChanged(ctx, pr)
	}
}

// Create stores a new request in the Requested state. The requester defaults
// to the caller. The agent is always the listing's owner; whatever the body
// says about agent_email is overwritten.
func (l *purchaseLedger) Create(ctx context.Context, caller string, pr *models.PurchaseRequest) (*models.PurchaseRequest, error) {
	if pr == nil {
		return nil, fmt.Errorf("%w: empty purchase request", ErrInvalidArgument)
	}
	pr.ListingID = strings.TrimSpace(pr.ListingID)
	pr.RequesterEmail = strings.TrimSpace(pr.RequesterEmail)
	if pr.RequesterEmail == "" {
		pr.RequesterEmail = caller
	}
	if pr.ListingID == "" || pr.RequesterEmail == "" {
		return nil, fmt.Errorf("%w: main_id and buyer_email are required", ErrInvalidArgument)
	}
	if _, err := db.ParseID(pr.ListingID); err != nil {
		return nil, err
	}

	property, err := l.listings.FindByID(ctx, pr.ListingID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(property.AgentEmail) == "" {
		return nil, fmt.Errorf("%w: listing %s has no owning agent", ErrConflict, pr.ListingID)
	}
	pr.AgentEmail = property.AgentEmail
	if pr.AgentName == "" {
		pr.AgentName = property.AgentName
	}
	if pr.Title == "" {
		pr.Title = property.Title
	}
	if pr.Location == "" {
		pr.Location = property.Location
	}
	if pr.Image == "" {
		pr.Image = property.Image
	}

	now := time.Now().UTC()
	pr.ID = primitive.NilObjectID
	pr.Status = models.StatusRequested
	pr.PaymentID = ""
	pr.CreatedAt = now
	pr.UpdatedAt = now

	if err := l.store.Insert(ctx, pr); err != nil {
		return nil, err
	}
	l.notify(ctx, *pr)
	return pr, nil
}

func (l *purchaseLedger) ListAll(ctx context.Context) ([]models.PurchaseRequest, error) {
	return l.store.FindAll(ctx)
}

func (l *purchaseLedger) Get(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	return l.store.FindByID(ctx, oid)
}

func (l *purchaseLedger) ListByAgent(ctx context.Context, agentEmail string) ([]models.PurchaseRequest, error) {
	if strings.TrimSpace(agentEmail) == "" {
		return nil, fmt.Errorf("%w: agent email is required", ErrInvalidArgument)
	}
	return l.store.FindByAgent(ctx, agentEmail)
}

func ownedBy(pr *models.PurchaseRequest, caller string) bool {
	return caller != "" && strings.EqualFold(pr.AgentEmail, caller)
}

// Accept claims the listing for one request and rejects every sibling of it.
// Accepts on the same listing are serialized and both writes share one
// transaction when the store supports it. A listing that has been bought
// cannot be re-assigned.
func (l *purchaseLedger) Accept(ctx context.Context, caller, id, listingID string) (*AcceptResult, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.ParseID(listingID); err != nil {
		return nil, err
	}

	unlock, err := l.locker.Lock(ctx, listingLockKey(listingID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %s: %w", listingID, err)
	}
	defer unlock()

	target, err := l.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if target.ListingID != listingID {
		return nil, fmt.Errorf("%w: request %s belongs to listing %s, not %s", ErrInvalidArgument, id, target.ListingID, listingID)
	}
	if !ownedBy(target, caller) {
		return nil, fmt.Errorf("%w: request %s is not managed by %s", ErrForbidden, id, caller)
	}

	before, err := l.store.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for _, pr := range before {
		if pr.Status == models.StatusBought {
			return nil, fmt.Errorf("%w: listing %s is already bought by request %s", ErrConflict, listingID, pr.ID.Hex())
		}
	}

	result := &AcceptResult{}
	err = l.store.WithTransaction(ctx, func(ctx context.Context) error {
		accepted, err := l.store.SetStatus(ctx, oid, models.StatusAccepted)
		if err != nil {
			return fmt.Errorf("accept %s: %w", id, err)
		}
		result.Accepted = accepted

		rejected, err := l.store.RejectSiblings(ctx, listingID, oid)
		if err != nil {
			return fmt.Errorf("reject siblings of %s: %w", id, err)
		}
		result.Rejected = rejected
		return nil
	})
	if err != nil {
		if l.store.Transactional() {
			// Aborted; nothing was applied.
			return &AcceptResult{}, err
		}
		log.Printf("Accept of %s on listing %s failed part way (accepted=%+v rejected=%+v): %v", id, listingID, result.Accepted, result.Rejected, err)
		return result, err
	}

	var changed []models.PurchaseRequest
	for _, pr := range before {
		next := models.StatusRejected
		if pr.ID == oid {
			next = models.StatusAccepted
		}
		if pr.Status != next {
			pr.Status = next
			changed = append(changed, pr)
		}
	}
	l.notify(ctx, changed...)
	return result, nil
}

// Reject sets the request to Rejected whatever its current state.
func (l *purchaseLedger) Reject(ctx context.Context, caller, id string) (WriteCount, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return WriteCount{}, err
	}
	target, err := l.store.FindByID(ctx, oid)
	if err != nil {
		return WriteCount{}, err
	}
	if !ownedBy(target, caller) {
		return WriteCount{}, fmt.Errorf("%w: request %s is not managed by %s", ErrForbidden, id, caller)
	}

	unlock, err := l.locker.Lock(ctx, listingLockKey(target.ListingID))
	if err != nil {
		return WriteCount{}, fmt.Errorf("failed to lock listing %s: %w", target.ListingID, err)
	}
	defer unlock()

	res, err := l.store.SetStatus(ctx, oid, models.StatusRejected)
	if err != nil {
		return res, err
	}
	if res.Modified > 0 {
		target.Status = models.StatusRejected
		l.notify(ctx, *target)
	}
	return res, nil
}

// MarkBought records the payment and sets the request to Bought from any prior
// state. The listing is claimed the same way Accept claims it, so other
// requests on it end up Rejected.
func (l *purchaseLedger) MarkBought(ctx context.Context, id, paymentRef string) (*BoughtResult, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrInvalidArgument)
	}

	target, err := l.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	unlock, err := l.locker.Lock(ctx, listingLockKey(target.ListingID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %s: %w", target.ListingID, err)
	}
	defer unlock()

	before, err := l.store.FindByListing(ctx, target.ListingID)
	if err != nil {
		return nil, err
	}
	for _, pr := range before {
		if pr.ID != oid && pr.Status == models.StatusBought {
			return nil, fmt.Errorf("%w: listing %s is already bought by request %s", ErrConflict, target.ListingID, pr.ID.Hex())
		}
	}

	result := &BoughtResult{}
	err = l.store.WithTransaction(ctx, func(ctx context.Context) error {
		bought, err := l.store.SetBought(ctx, oid, paymentRef)
		if err != nil {
			return fmt.Errorf("mark %s bought: %w", id, err)
		}
		result.Bought = bought

		rejected, err := l.store.RejectSiblings(ctx, target.ListingID, oid)
		if err != nil {
			return fmt.Errorf("reject siblings of %s: %w", id, err)
		}
		result.Rejected = rejected
		return nil
	})
	if err != nil {
		if l.store.Transactional() {
			return &BoughtResult{}, err
		}
		return result, err
	}

	var changed []models.PurchaseRequest
	for _, pr := range before {
		if pr.ID == oid {
			pr.Status = models.StatusBought
			pr.PaymentID = paymentRef
			changed = append(changed, pr)
		} else if pr.Status != models.StatusRejected {
			pr.Status = models.StatusRejected
			changed = append(changed, pr)
		}
	}
	l.notify(ctx, changed...)
	return result, nil
}

// PurgeByAgent deletes every request managed by the agent, whatever its status.
func (l *purchaseLedger) PurgeByAgent(ctx context.Context, agentEmail string) (int64, error) {
	agentEmail = strings.TrimSpace(agentEmail)
	if agentEmail == "" {
		return 0, fmt.Errorf("%w: agent email is required", ErrInvalidArgument)
	}
	n, err := l.store.DeleteByAgent(ctx, agentEmail)
	if err != nil {
		return 0, err
	}
	log.Printf("Purged %d purchase requests of agent %s", n, agentEmail)
	return n, nil
}
