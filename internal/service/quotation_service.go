package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/platform/blob"
	"github.com/tripdesk/crm-backend/internal/platform/pdf"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type QuotationService interface {
	// Save creates (req.ID nil) or updates (req.ID set) a quotation,
	// rendering a fresh PDF artifact when requested.
	Save(ctx context.Context, callerRole domain.Role, callerID string, req *domain.SaveQuotationRequest) (*domain.SaveQuotationResult, error)
	// FetchAll unions every partition's quotations. Partitions that fail
	// are skipped; the call errors only when all three fail.
	FetchAll(ctx context.Context) ([]domain.Quotation, error)
	FetchOwn(ctx context.Context, role domain.Role, userID string) ([]domain.Quotation, error)
	Delete(ctx context.Context, callerRole domain.Role, callerID string, id int64) error
	// TrackPDF bumps a view/download counter for a shared itinerary link.
	// The owning partition is unknown, so partitions are probed in fixed
	// order and the first match wins.
	TrackPDF(ctx context.Context, req *domain.TrackPDFRequest) (string, error)
}

type quotationService struct {
	partitions *repository.Partitions
	blobs      blob.Store
	renderer   pdf.Renderer
	notifier   push.Notifier
}

func NewQuotationService(
	partitions *repository.Partitions,
	blobs blob.Store,
	renderer pdf.Renderer,
	notifier push.Notifier,
) QuotationService {
	return &quotationService{
		partitions: partitions,
		blobs:      blobs,
		renderer:   renderer,
		notifier:   notifier,
	}
}

var scriptTagRe = regexp.MustCompile(`(?is)<script.*?</script>`)

// sanitizeHTML undoes the client's entity-escaped quotes and drops script
// blocks before the document reaches the renderer.
func sanitizeHTML(html string) string {
	html = strings.ReplaceAll(html, "&quot;", `"`)
	return scriptTagRe.ReplaceAllString(html, "")
}

func (s *quotationService) Save(ctx context.Context, callerRole domain.Role, callerID string, req *domain.SaveQuotationRequest) (*domain.SaveQuotationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.BadRequestf("%s", err)
	}

	// Admins may act on another user's quotation; everyone else stays in
	// their own partition under their own id.
	ownerID := callerID
	ownerRole := callerRole
	ownerFilter := callerID
	if callerRole == domain.RoleAdmin && req.OwnerID != "" && req.OwnerID != callerID {
		role, ok := domain.RoleFromUserID(req.OwnerID)
		if !ok {
			return nil, domain.BadRequestf("invalid userId %q", req.OwnerID)
		}
		ownerID = req.OwnerID
		ownerRole = role
		ownerFilter = ""
	}

	part, ok := s.partitions.ByRole(ownerRole)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", ownerRole)
	}

	pdfURL := ""
	if req.ID != nil {
		existing, err := part.Quotations.FindByID(ctx, *req.ID)
		if err != nil {
			return nil, domain.Internalf("find quotation: %v", err)
		}
		if existing == nil || (ownerFilter != "" && existing.OwnerID != ownerFilter) {
			return nil, domain.NotFoundf("quotation not found")
		}
		pdfURL = existing.PDFURL
	}

	oldPDFURL := pdfURL
	if req.WillGenerateNewPDF {
		url, err := s.renderPDF(ctx, req.HTMLContent)
		if err != nil {
			return nil, err
		}
		pdfURL = url
	}

	q := &domain.Quotation{
		OwnerID:          ownerID,
		QuotationName:    req.QuotationName,
		TravelInfo:       req.TravelInfo,
		CitiesHotelsInfo: req.CitiesHotelsInfo,
		TransportInfo:    req.TransportInfo,
		TotalAmount:      req.TotalAmount,
		Status:           req.Status,
		PDFURL:           pdfURL,
	}

	var saved *domain.Quotation
	var message string
	var err error
	if req.ID == nil {
		saved, err = part.Quotations.Create(ctx, q)
		message = "Quotation created successfully"
	} else {
		q.ID = *req.ID
		saved, err = part.Quotations.Update(ctx, q, ownerFilter)
		message = "Quotation updated successfully"
	}
	if err != nil {
		return nil, domain.Internalf("save quotation: %v", err)
	}
	if saved == nil {
		return nil, domain.NotFoundf("quotation not found")
	}

	// The old artifact is unreachable once the row points at the new one.
	if req.WillGenerateNewPDF && oldPDFURL != "" && oldPDFURL != saved.PDFURL {
		s.deletePDF(ctx, oldPDFURL)
	}

	switch {
	case saved.Status == domain.QuotationPending && callerRole != domain.RoleAdmin:
		s.announcePending(ctx, callerID, saved)
	case saved.Status.IsDecision() && callerRole == domain.RoleAdmin:
		s.announceDecision(ctx, ownerRole, saved)
	}

	logger.InfoContext(ctx, "quotation saved", "id", saved.ID, "owner", saved.OwnerID, "status", saved.Status)
	return &domain.SaveQuotationResult{ID: saved.ID, Link: saved.PDFURL, Message: message}, nil
}

func (s *quotationService) renderPDF(ctx context.Context, html string) (string, error) {
	rendered, err := s.renderer.Render(ctx, sanitizeHTML(html))
	if err != nil {
		return "", domain.Internalf("render pdf: %v", err)
	}
	compressed, err := pdf.Compress(rendered)
	if err != nil {
		return "", domain.Internalf("compress pdf: %v", err)
	}
	key := fmt.Sprintf("itinerary-pdfs/%d-%s.pdf", time.Now().UnixMilli(), uuid.NewString())
	url, err := s.blobs.Put(ctx, key, compressed, "application/pdf")
	if err != nil {
		return "", domain.Internalf("store pdf: %v", err)
	}
	return url, nil
}

func (s *quotationService) deletePDF(ctx context.Context, url string) {
	deleteBlobByURL(ctx, s.blobs, url)
}

// announcePending records an admin notification for a quotation submitted
// for review and pushes it to connected admins.
func (s *quotationService) announcePending(ctx context.Context, submitterID string, q *domain.Quotation) {
	n := &domain.Notification{
		UserID:        AdminRecipient,
		Type:          domain.NotificationQuotation,
		Title:         "Itinerary Approval Needed!",
		Description:   fmt.Sprintf("%q was submitted for approval", q.QuotationName),
		QuotationName: q.QuotationName,
		QuotationID:   strconv.FormatInt(q.ID, 10),
		Link:          q.PDFURL,
	}
	if _, err := s.partitions.Admin.Notifications.Create(ctx, n); err != nil {
		logger.ErrorContext(ctx, "record pending notification", "quotation_id", q.ID, "error", err)
	}
	s.notifier.BroadcastAdmin(ctx, push.Payload{
		Type:        string(domain.NotificationQuotation),
		Title:       n.Title,
		Description: n.Description,
		Link:        q.PDFURL,
		QuotationID: q.ID,
	})
}

// announceDecision records the approval outcome in the owner's partition and
// pushes it to the owner.
func (s *quotationService) announceDecision(ctx context.Context, ownerRole domain.Role, q *domain.Quotation) {
	part, ok := s.partitions.ByRole(ownerRole)
	if !ok {
		return
	}
	title := "Itinerary Approved!"
	if q.Status == domain.QuotationRejected {
		title = "Itinerary Rejected!"
	}
	n := &domain.Notification{
		UserID:        q.OwnerID,
		Type:          domain.NotificationQuotation,
		Title:         title,
		Description:   fmt.Sprintf("%q was %s", q.QuotationName, q.Status),
		QuotationName: q.QuotationName,
		QuotationID:   strconv.FormatInt(q.ID, 10),
		Link:          q.PDFURL,
	}
	if _, err := part.Notifications.Create(ctx, n); err != nil {
		logger.ErrorContext(ctx, "record decision notification", "quotation_id", q.ID, "error", err)
	}
	s.notifier.NotifyUser(ctx, q.OwnerID, push.Payload{
		Type:        string(domain.NotificationQuotation),
		Title:       title,
		Description: n.Description,
		Link:        q.PDFURL,
		QuotationID: q.ID,
	})
}

func (s *quotationService) FetchAll(ctx context.Context) ([]domain.Quotation, error) {
	type result struct {
		role       domain.Role
		quotations []domain.Quotation
		err        error
	}

	parts := s.partitions.All()
	results := make([]result, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part *repository.Partition) {
			defer wg.Done()
			quotations, err := part.Quotations.List(ctx)
			results[i] = result{role: part.Role, quotations: quotations, err: err}
		}(i, part)
	}
	wg.Wait()

	var all []domain.Quotation
	failures := 0
	for _, res := range results {
		if res.err != nil {
			failures++
			logger.ErrorContext(ctx, "list quotations", "role", res.role, "error", res.err)
			continue
		}
		for i := range res.quotations {
			res.quotations[i].Role = res.role
		}
		all = append(all, res.quotations...)
	}
	if failures == len(parts) {
		return nil, domain.Internalf("all partitions unavailable")
	}
	return all, nil
}

func (s *quotationService) FetchOwn(ctx context.Context, role domain.Role, userID string) ([]domain.Quotation, error) {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}
	quotations, err := part.Quotations.FindByOwner(ctx, userID)
	if err != nil {
		return nil, domain.Internalf("list quotations: %v", err)
	}
	for i := range quotations {
		quotations[i].Role = role
	}
	return quotations, nil
}

func (s *quotationService) Delete(ctx context.Context, callerRole domain.Role, callerID string, id int64) error {
	if callerRole == domain.RoleAdmin {
		// Owning partition unknown; probe in fixed order.
		for _, part := range s.partitions.ProbeOrder() {
			deleted, err := part.Quotations.Delete(ctx, id, "")
			if err != nil {
				logger.ErrorContext(ctx, "delete quotation", "role", part.Role, "id", id, "error", err)
				continue
			}
			if deleted != nil {
				if deleted.PDFURL != "" {
					s.deletePDF(ctx, deleted.PDFURL)
				}
				return nil
			}
		}
		return domain.NotFoundf("quotation not found")
	}

	part, ok := s.partitions.ByRole(callerRole)
	if !ok {
		return domain.BadRequestf("unknown role %q", callerRole)
	}
	deleted, err := part.Quotations.Delete(ctx, id, callerID)
	if err != nil {
		return domain.Internalf("delete quotation: %v", err)
	}
	if deleted == nil {
		return domain.NotFoundf("quotation not found")
	}
	if deleted.PDFURL != "" {
		s.deletePDF(ctx, deleted.PDFURL)
	}
	return nil
}

func (s *quotationService) TrackPDF(ctx context.Context, req *domain.TrackPDFRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", domain.BadRequestf("%s", err)
	}
	for _, part := range s.partitions.ProbeOrder() {
		pdfURL, found, err := part.Quotations.IncrementCounter(ctx, req.ID, req.Action)
		if err != nil {
			logger.ErrorContext(ctx, "track pdf", "role", part.Role, "id", req.ID, "error", err)
			continue
		}
		if found {
			return pdfURL, nil
		}
	}
	return "", domain.NotFoundf("quotation not found")
}
