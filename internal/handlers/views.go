package handlers

import (
	"github.com/splitbook/backend/internal/ledger"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/service"
)

// View types keep the wire format independent of the internal models.

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func toUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.Avatar, CreatedAt: u.CreatedAt}
}

func toUserViews(users []*models.User) []userView {
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = toUserView(u)
	}
	return out
}

type userRefView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type pendingMemberView struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	InvitedBy string `json:"invitedBy"`
	InvitedAt int64  `json:"invitedAt"`
}

type groupView struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Currency       string              `json:"currency"`
	Icon           string              `json:"icon,omitempty"`
	Image          string              `json:"image,omitempty"`
	Members        []string            `json:"members"`
	PendingMembers []pendingMemberView `json:"pendingMembers"`
	OwnerID        string              `json:"ownerId"`
	CreatedAt      int64               `json:"createdAt"`
	UpdatedAt      int64               `json:"updatedAt"`
}

func toGroupView(g *models.Group) groupView {
	pending := make([]pendingMemberView, len(g.PendingMembers))
	for i, pm := range g.PendingMembers {
		pending[i] = pendingMemberView{Email: pm.Email, Name: pm.Name, InvitedBy: pm.InvitedBy, InvitedAt: pm.InvitedAt}
	}
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return groupView{
		ID:             g.ID,
		Name:           g.Name,
		Currency:       g.Currency,
		Icon:           g.Icon,
		Image:          g.Image,
		Members:        members,
		PendingMembers: pending,
		OwnerID:        g.OwnerID,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

type splitView struct {
	UserID  string  `json:"userId,omitempty"`
	Email   string  `json:"email,omitempty"`
	Name    string  `json:"name,omitempty"`
	Amount  float64 `json:"amount"`
	Pending bool    `json:"pending"`
}

type paymentView struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	RecordedBy    string `json:"recordedBy"`
}

type verificationView struct {
	Verified   bool   `json:"verified"`
	VerifiedBy string `json:"verifiedBy,omitempty"`
	VerifiedAt int64  `json:"verifiedAt,omitempty"`
	Status     string `json:"status"`
}

type recordView struct {
	ID           string            `json:"id"`
	GroupID      string            `json:"groupId"`
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	Kind         string            `json:"kind"`
	Date         int64             `json:"date"`
	PayerID      string            `json:"payerId"`
	ReceiverID   string            `json:"receiverId,omitempty"`
	CategoryID   string            `json:"categoryId,omitempty"`
	ReceiptImage string            `json:"receiptImage,omitempty"`
	Splits       []splitView       `json:"splits"`
	Payment      *paymentView      `json:"payment,omitempty"`
	Verification *verificationView `json:"verification,omitempty"`
	CreatedAt    int64             `json:"createdAt"`
	UpdatedAt    int64             `json:"updatedAt"`
}

func toRecordView(rec *models.Record) recordView {
	splits := make([]splitView, len(rec.Splits))
	for i, sp := range rec.Splits {
		splits[i] = splitView{UserID: sp.UserID, Email: sp.Email, Name: sp.Name, Amount: sp.Amount, Pending: sp.Pending}
	}
	v := recordView{
		ID:           rec.ID,
		GroupID:      rec.GroupID,
		Description:  rec.Description,
		Amount:       rec.Amount,
		Kind:         rec.Kind,
		Date:         rec.Date,
		PayerID:      rec.PayerID,
		ReceiverID:   rec.ReceiverID,
		CategoryID:   rec.CategoryID,
		ReceiptImage: rec.ReceiptImage,
		Splits:       splits,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.Payment != nil {
		v.Payment = &paymentView{
			Method:        rec.Payment.Method,
			TransactionID: rec.Payment.TransactionID,
			Remarks:       rec.Payment.Remarks,
			RecordedBy:    rec.Payment.RecordedBy,
		}
	}
	if rec.Verification != nil {
		v.Verification = &verificationView{
			Verified:   rec.Verification.Verified,
			VerifiedBy: rec.Verification.VerifiedBy,
			VerifiedAt: rec.Verification.VerifiedAt,
			Status:     rec.Verification.Status,
		}
	}
	return v
}

func toRecordViews(recs []models.Record) []recordView {
	out := make([]recordView, len(recs))
	for i := range recs {
		out[i] = toRecordView(&recs[i])
	}
	return out
}

type recordDetailView struct {
	recordView
	GroupName string                 `json:"groupName"`
	Users     map[string]userRefView `json:"users"`
	Category  *categoryView          `json:"category,omitempty"`
}

func toRecordDetailView(d *service.RecordDetail) recordDetailView {
	users := make(map[string]userRefView, len(d.Users))
	for id, u := range d.Users {
		users[id] = userRefView{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
	}
	view := recordDetailView{
		recordView: toRecordView(d.Record),
		GroupName:  d.GroupName,
		Users:      users,
	}
	if d.Category != nil {
		view.Category = &categoryView{
			ID: d.Category.ID, Name: d.Category.Name, Icon: d.Category.Icon,
			Type: d.Category.Type, CreatedBy: d.Category.CreatedBy,
		}
	}
	return view
}

type balanceView struct {
	UserID  string  `json:"userId,omitempty"`
	Email   string  `json:"email,omitempty"`
	Name    string  `json:"name,omitempty"`
	Balance float64 `json:"balance"`
	Pending bool    `json:"pending"`
}

func toBalanceViews(entries []ledger.BalanceEntry) []balanceView {
	out := make([]balanceView, len(entries))
	for i, e := range entries {
		out[i] = balanceView{UserID: e.UserID, Email: e.Email, Name: e.Name, Balance: e.Balance, Pending: e.Pending}
	}
	return out
}

type notificationView struct {
	ID          string         `json:"id"`
	Recipient   string         `json:"recipient"`
	Sender      string         `json:"sender,omitempty"`
	Type        string         `json:"type"`
	Message     string         `json:"message"`
	RelatedID   string         `json:"relatedId,omitempty"`
	RelatedKind string         `json:"relatedKind,omitempty"`
	Read        bool           `json:"read"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
}

func toNotificationViews(notifs []*models.Notification) []notificationView {
	out := make([]notificationView, len(notifs))
	for i, n := range notifs {
		out[i] = notificationView{
			ID:          n.ID,
			Recipient:   n.Recipient,
			Sender:      n.Sender,
			Type:        n.Type,
			Message:     n.Message,
			RelatedID:   n.RelatedID,
			RelatedKind: n.RelatedKind,
			Read:        n.Read,
			Metadata:    n.Metadata,
			CreatedAt:   n.CreatedAt,
		}
	}
	return out
}

type categoryView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Type      string `json:"type"`
	CreatedBy string `json:"createdBy,omitempty"`
}

func toCategoryViews(cats []*models.Category) []categoryView {
	out := make([]categoryView, len(cats))
	for i, c := range cats {
		out[i] = categoryView{ID: c.ID, Name: c.Name, Icon: c.Icon, Type: c.Type, CreatedBy: c.CreatedBy}
	}
	return out
}
