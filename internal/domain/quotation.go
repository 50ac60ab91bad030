package domain

import (
	"fmt"
	"time"
)

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationPending  QuotationStatus = "pending"
	QuotationApproved QuotationStatus = "approved"
	QuotationRejected QuotationStatus = "rejected"
)

var validQuotationStatuses = map[QuotationStatus]bool{
	QuotationDraft:    true,
	QuotationPending:  true,
	QuotationApproved: true,
	QuotationRejected: true,
}

// IsDecision reports whether the status represents an admin review outcome.
func (s QuotationStatus) IsDecision() bool {
	return s == QuotationApproved || s == QuotationRejected
}

type TravelInfo struct {
	UserName         string    `json:"userName"`
	JourneyStartDate time.Time `json:"journeyStartDate"`
	JourneyEndDate   time.Time `json:"journeyEndDate"`
}

type HotelStay struct {
	ID          int       `json:"id"`
	HotelName   string    `json:"hotelName"`
	HotelType   string    `json:"hotelType"`
	HotelImage  string    `json:"hotelImage,omitempty"`
	CheckIn     time.Time `json:"checkIn"`
	CheckOut    time.Time `json:"checkOut"`
	IsBreakfast bool      `json:"isBreakfast"`
	IsLunch     bool      `json:"isLunch"`
	IsDinner    bool      `json:"isDinner"`
	Rooms       int       `json:"rooms"`
	RoomType    []string  `json:"roomType"`
	Adult       int       `json:"adult"`
	Child       int       `json:"child"`
	ExtraBed    int       `json:"extraBed"`
	Price       string    `json:"price,omitempty"`
	Image       string    `json:"image,omitempty"`
}

type City struct {
	ID        int         `json:"id"`
	CityName  string      `json:"cityName"`
	HotelInfo []HotelStay `json:"hotelInfo"`
}

type CitiesHotelsInfo struct {
	Cities []City `json:"cities"`
}

type TransportInfo struct {
	VehicleType        string    `json:"vehicleType"`
	From               string    `json:"from"`
	Checkpoints        []string  `json:"checkpoints"`
	To                 string    `json:"to"`
	TransportStartDate time.Time `json:"transportStartDate"`
	TransportEndDate   time.Time `json:"transportEndDate"`
}

// Quotation is a structured itinerary document with an approval lifecycle
// and an optional rendered PDF artifact. It lives in exactly one role
// partition; its numeric id is only unique within that partition.
type Quotation struct {
	ID               int64            `json:"id,string"`
	OwnerID          string           `json:"userId"`
	Role             Role             `json:"role,omitempty"`
	QuotationName    string           `json:"quotationName"`
	TravelInfo       TravelInfo       `json:"travelInfo"`
	CitiesHotelsInfo CitiesHotelsInfo `json:"citiesHotelsInfo"`
	TransportInfo    TransportInfo    `json:"transportInfo"`
	TotalAmount      string           `json:"totalAmount,omitempty"`
	Status           QuotationStatus  `json:"status"`
	PDFURL           string           `json:"pdfUrl,omitempty"`
	ViewCount        int64            `json:"viewCount"`
	DownloadCount    int64            `json:"downloadCount"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// SaveQuotationRequest covers both create (ID nil) and update (ID set).
// OwnerID is honored only for admin callers acting on another role's
// quotation; everyone else operates on their own partition.
type SaveQuotationRequest struct {
	ID                 *int64           `json:"id,string,omitempty"`
	OwnerID            string           `json:"userId,omitempty"`
	QuotationName      string           `json:"quotationName"`
	TravelInfo         TravelInfo       `json:"travelInfo"`
	CitiesHotelsInfo   CitiesHotelsInfo `json:"citiesHotelsInfo"`
	TransportInfo      TransportInfo    `json:"transportInfo"`
	TotalAmount        string           `json:"totalAmount,omitempty"`
	Status             QuotationStatus  `json:"status"`
	HTMLContent        string           `json:"htmlContent,omitempty"`
	WillGenerateNewPDF bool             `json:"willGenerateNewPdf"`
}

func (r *SaveQuotationRequest) Validate() error {
	if r.QuotationName == "" {
		return fmt.Errorf("quotationName is required")
	}
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	if !validQuotationStatuses[r.Status] {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.WillGenerateNewPDF && r.HTMLContent == "" {
		return fmt.Errorf("htmlContent is required when willGenerateNewPdf is set")
	}
	return nil
}

// SaveQuotationResult mirrors the original API's create/update payload.
type SaveQuotationResult struct {
	ID      int64  `json:"id,string"`
	Link    string `json:"link,omitempty"`
	Message string `json:"message"`
}

// PDF tracking actions for shared/public itinerary links.
const (
	TrackActionView     = "view"
	TrackActionDownload = "download"
)

type TrackPDFRequest struct {
	ID     int64  `json:"id,string"`
	Action string `json:"action"`
}

func (r *TrackPDFRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	if r.Action != TrackActionView && r.Action != TrackActionDownload {
		return fmt.Errorf("action must be %q or %q", TrackActionView, TrackActionDownload)
	}
	return nil
}
