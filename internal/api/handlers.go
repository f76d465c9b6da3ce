package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/artistry-cart/internal/checkout"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/service"
)

type handlers struct {
	deps Deps
}

type addCartItemRequest struct {
	Artwork  domain.Artwork `json:"artwork"`
	Quantity *int           `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type artworkRequest struct {
	Artwork domain.Artwork `json:"artwork"`
}

type lineItemResponse struct {
	Artwork  domain.Artwork `json:"artwork"`
	Quantity int            `json:"quantity"`
	Subtotal string         `json:"subtotal"`
}

type cartResponse struct {
	Items    []lineItemResponse `json:"items"`
	Count    int                `json:"count"`
	Total    string             `json:"total"`
	Currency string             `json:"currency"`
	Open     bool               `json:"open"`
}

type wishlistResponse struct {
	Items []domain.Artwork `json:"items"`
	Count int              `json:"count"`
}

type receiptResponse struct {
	OrderID       string             `json:"order_id"`
	Items         []lineItemResponse `json:"items"`
	Count         int                `json:"count"`
	Total         string             `json:"total"`
	Currency      string             `json:"currency"`
	Recorded      bool               `json:"recorded"`
	CompletedAt   string             `json:"completed_at"`
	DownloadError string             `json:"download_error,omitempty"`
}

func (h *handlers) session(c *gin.Context) (*service.Session, bool) {
	session, err := h.deps.Registry.Session(c.Request.Context(), c.GetString(ownerKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	return session, true
}

func (h *handlers) getCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newCartResponse(session))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Cart.AddItem(c.Request.Context(), req.Artwork, quantity); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newCartResponse(session))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Cart.UpdateQuantity(c.Request.Context(), c.Param("itemID"), *req.Quantity)

	c.JSON(http.StatusOK, newCartResponse(session))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Cart.RemoveItem(c.Request.Context(), c.Param("itemID"))

	c.JSON(http.StatusOK, newCartResponse(session))
}

func (h *handlers) clearCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Cart.Clear(c.Request.Context())

	c.JSON(http.StatusOK, newCartResponse(session))
}

func (h *handlers) getWishlist(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newWishlistResponse(session))
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	var req artworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := session.Wishlist.Add(c.Request.Context(), req.Artwork); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newWishlistResponse(session))
}

func (h *handlers) toggleWishlistItem(c *gin.Context) {
	var req artworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	present, err := session.Wishlist.Toggle(c.Request.Context(), req.Artwork)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := newWishlistResponse(session)
	c.JSON(http.StatusOK, gin.H{"present": present, "items": resp.Items, "count": resp.Count})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Wishlist.Remove(c.Request.Context(), c.Param("itemID"))

	c.JSON(http.StatusOK, newWishlistResponse(session))
}

func (h *handlers) checkout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	release, ok := session.BeginCheckout()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "checkout already in progress"})
		return
	}
	defer release()

	flow, err := checkout.New(checkout.Config{
		OwnerID:    session.OwnerID,
		Cart:       session.Cart,
		Downloader: h.deps.Downloader,
		Orders:     h.deps.Orders,
		Logger:     h.deps.Logger,
		Metrics:    h.deps.Metrics,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	receipt, err := flow.Run(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newReceiptResponse(receipt))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrOrderNotRecorded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newLineItemResponses(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemResponse{
			Artwork:  item.Artwork,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().Amount.StringFixed(2),
		})
	}

	return out
}

func newCartResponse(session *service.Session) cartResponse {
	snapshot := session.Cart.Snapshot()
	total := snapshot.Total()

	return cartResponse{
		Items:    newLineItemResponses(snapshot.Items()),
		Count:    snapshot.Count(),
		Total:    total.Amount.StringFixed(2),
		Currency: total.Currency.String(),
		Open:     session.Reveal.IsOpen(),
	}
}

func newWishlistResponse(session *service.Session) wishlistResponse {
	items := session.Wishlist.Items()
	if items == nil {
		items = []domain.Artwork{}
	}

	return wishlistResponse{Items: items, Count: len(items)}
}

func newReceiptResponse(receipt checkout.Receipt) receiptResponse {
	resp := receiptResponse{
		OrderID:     receipt.OrderID.String(),
		Items:       newLineItemResponses(receipt.Items),
		Count:       receipt.Count,
		Total:       receipt.Total.Amount.StringFixed(2),
		Currency:    receipt.Total.Currency.String(),
		Recorded:    receipt.Recorded,
		CompletedAt: receipt.CompletedAt.UTC().Format(time.RFC3339),
	}
	if receipt.DownloadErr != nil {
		resp.DownloadError = receipt.DownloadErr.Error()
	}

	return resp
}
