package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// IAsynqClient defines the Asynq client methods used to enqueue tasks.
// This allows for mocking in tests.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns domain events into background tasks.
type Dispatcher struct {
	client IAsynqClient
}

// NewDispatcher creates a Dispatcher. A nil client disables enqueuing.
func NewDispatcher(client IAsynqClient) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if d.client == nil {
		return nil, fmt.Errorf("task client not configured, dropping %s", taskType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	return d.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...)
}

// PurchaseStatusChanged enqueues a status notification. Enqueue failures are
// logged; the status change itself has already been committed.
func (d *Dispatcher) PurchaseStatusChanged(ctx context.Context, pr models.PurchaseRequest) {
	info, err := d.enqueue(ctx, TypePurchaseStatusNotify, purchaseStatusPayload(pr),
		asynq.Queue(QueueDefault), asynq.MaxRetry(5), asynq.Timeout(time.Minute))
	if err != nil {
		log.Printf("Failed to enqueue status notification for purchase request %s (%s): %v", pr.ID.Hex(), pr.Status, err)
		return
	}
	log.Printf("Enqueued %s task %s for purchase request %s (%s)", TypePurchaseStatusNotify, info.ID, pr.ID.Hex(), pr.Status)
}

// ScheduleFraudPurge enqueues the purge of everything a fraud agent owns.
func (d *Dispatcher) ScheduleFraudPurge(ctx context.Context, agentEmail string) (string, error) {
	info, err := d.enqueue(ctx, TypeAgentFraudPurge, FraudPurgePayload{AgentEmail: agentEmail},
		asynq.Queue(QueueCritical), asynq.MaxRetry(10))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue fraud purge for %s: %w", agentEmail, err)
	}
	return info.ID, nil
}

// SendEmail enqueues a templated email.
func (d *Dispatcher) SendEmail(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	_, err := d.enqueue(ctx, TypeEmailDelivery, EmailTaskPayload{To: to, TemplateID: templateID, Data: data},
		asynq.Queue(QueueDefault))
	return err
}
