package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/email"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery        = "email:deliver"
	TypePurchaseStatusNotify = "purchase:status:notify"
	TypeAgentFraudPurge      = "agent:fraud:purge"
)

// Queue names and their priorities.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

func redisClientOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisClientOpt(rdb))
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	ledger          services.IPurchaseLedger
	propertyService services.IPropertyService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	ledger services.IPurchaseLedger,
	propertyService services.IPropertyService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		ledger:          ledger,
		propertyService: propertyService,
	}
}

// SetupServer configures the Asynq server and its handlers. The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisClientOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypePurchaseStatusNotify, processor.HandlePurchaseStatusNotifyTask)
	mux.HandleFunc(TypeAgentFraudPurge, processor.HandleAgentFraudPurgeTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// EmailTaskPayload is the payload of TypeEmailDelivery.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Data       map[string]interface{} `json:"data"`
}

func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}
	return p.deliver(ctx, payload.To, payload.TemplateID, payload.Data)
}

// deliver renders a template and hands the message to the sender. Unknown
// templates are not retried.
func (p *TaskProcessor) deliver(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["app_name"]; !ok {
		data["app_name"] = p.cfg.AppName
	}

	subject, body, err := renderTemplate(templateID, data)
	if err != nil {
		log.Printf("Error rendering email template %s for %s: %v", templateID, to, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, to)
	}

	msg := email.Message{
		From:       fromAddress,
		To:         []string{to},
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
	}
	if err := p.emailSender.Send(ctx, msg.To, subject, msg.Bytes()); err != nil {
		log.Printf("Email sending failed, will retry: %v", err)
		return err
	}
	log.Printf("Email task processed successfully: To=%s, Template=%s", to, templateID)
	return nil
}

// PurchaseStatusPayload is the payload of TypePurchaseStatusNotify.
type PurchaseStatusPayload struct {
	RequestID  string                `json:"request_id"`
	ListingID  string                `json:"main_id"`
	Title      string                `json:"title"`
	Location   string                `json:"location"`
	BuyerEmail string                `json:"buyer_email"`
	BuyerName  string                `json:"buyer_name"`
	AgentEmail string                `json:"agent_email"`
	AgentName  string                `json:"agent_name"`
	Status     models.PurchaseStatus `json:"status"`
	PaymentID  string                `json:"payment_id,omitempty"`
}

func purchaseStatusPayload(pr models.PurchaseRequest) PurchaseStatusPayload {
	return PurchaseStatusPayload{
		RequestID:  pr.ID.Hex(),
		ListingID:  pr.ListingID,
		Title:      pr.Title,
		Location:   pr.Location,
		BuyerEmail: pr.RequesterEmail,
		BuyerName:  pr.BuyerName,
		AgentEmail: pr.AgentEmail,
		AgentName:  pr.AgentName,
		Status:     pr.Status,
		PaymentID:  pr.PaymentID,
	}
}

// recipient picks who hears about a status: agents about new offers and
// payments, buyers about decisions.
func (pl PurchaseStatusPayload) recipient() (to, templateID string, ok bool) {
	switch pl.Status {
	case models.StatusRequested:
		return pl.AgentEmail, TemplatePurchaseRequested, true
	case models.StatusAccepted:
		return pl.BuyerEmail, TemplatePurchaseAccepted, true
	case models.StatusRejected:
		return pl.BuyerEmail, TemplatePurchaseRejected, true
	case models.StatusBought:
		return pl.AgentEmail, TemplatePurchaseBought, true
	}
	return "", "", false
}

func (p *TaskProcessor) HandlePurchaseStatusNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload PurchaseStatusPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal purchase status payload: %v: %w", err, asynq.SkipRetry)
	}
	to, templateID, ok := payload.recipient()
	if !ok {
		return fmt.Errorf("unknown purchase status %q: %w", payload.Status, asynq.SkipRetry)
	}
	if to == "" {
		log.Printf("Purchase request %s has no recipient for status %s, skipping notification", payload.RequestID, payload.Status)
		return nil
	}

	title := payload.Title
	if title == "" {
		title = "listing " + payload.ListingID
	}
	return p.deliver(ctx, to, templateID, map[string]interface{}{
		"title":       title,
		"location":    payload.Location,
		"buyer_email": payload.BuyerEmail,
		"buyer_name":  payload.BuyerName,
		"agent_name":  payload.AgentName,
		"payment_id":  payload.PaymentID,
	})
}

// FraudPurgePayload is the payload of TypeAgentFraudPurge.
type FraudPurgePayload struct {
	AgentEmail string `json:"agent_email"`
}

// HandleAgentFraudPurgeTask removes the purchase requests and the listings of
// a fraud agent. Both deletes are idempotent so the task can be retried.
func (p *TaskProcessor) HandleAgentFraudPurgeTask(ctx context.Context, t *asynq.Task) error {
	var payload FraudPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal fraud purge payload: %v: %w", err, asynq.SkipRetry)
	}

	requests, err := p.ledger.PurgeByAgent(ctx, payload.AgentEmail)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to purge purchase requests of %s: %w", payload.AgentEmail, err)
	}
	properties, err := p.propertyService.DeleteByAgent(ctx, payload.AgentEmail)
	if err != nil {
		return fmt.Errorf("failed to purge properties of %s: %w", payload.AgentEmail, err)
	}
	log.Printf("Fraud purge of %s removed %d purchase requests and %d properties", payload.AgentEmail, requests, properties)

	if err := p.deliver(ctx, payload.AgentEmail, TemplateAgentFraud, nil); err != nil {
		// The purge is done; a lost notice is not worth redoing it.
		log.Printf("Failed to notify %s of fraud purge: %v", payload.AgentEmail, err)
	}
	return nil
}
