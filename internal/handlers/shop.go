package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ishu34311-maker/Sales/internal/mykafka"
	"github.com/ishu34311-maker/Sales/internal/store"
	"github.com/ishu34311-maker/Sales/internal/util"
)

type ShopHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
}

func (h *ShopHandler) Menu(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()

	total, err := h.Store.CountProducts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if total == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Menu is empty. Please check back later.",
			"data":    []any{},
		})
	}

	items, err := h.Store.ListProductsPage(ctx, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ShopHandler) GetCart(c echo.Context) error {
	username, err := Username(c)
	if err != nil {
		return err
	}

	items, err := h.Store.GetCart(c.Request().Context(), username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, items)
}

// AddToCart appends a snapshot of the chosen product to the caller's cart.
func (h *ShopHandler) AddToCart(c echo.Context) error {
	username, err := Username(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()

	prod, err := h.Store.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	item, err := h.Store.AddToCart(ctx, username, prod)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, "order_events", username, map[string]any{
		"type":     "cart_item_added",
		"username": username,
		"name":     item.Name,
		"price":    item.Price,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Added " + item.Name + " to cart",
		"item":    item,
	})
}

// BuyNow places an order from the current cart, the cart must not be empty.
func (h *ShopHandler) BuyNow(c echo.Context) error {
	username, err := Username(c)
	if err != nil {
		return err
	}

	order, err := h.Store.Checkout(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrEmptyCart) {
			return c.JSON(http.StatusBadRequest, Response{
				Status:  "warning",
				Message: "Cart is empty.",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, "order_events", username, map[string]any{
		"type":     "order_placed",
		"username": username,
		"orderID":  order.ID,
		"items":    order.Items,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order placed successfully!",
		"order":   order,
	})
}

func (h *ShopHandler) MyOrders(c echo.Context) error {
	username, err := Username(c)
	if err != nil {
		return err
	}

	orders, err := h.Store.ListOrdersFor(c.Request().Context(), username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if len(orders) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "No orders found.",
			"orders":  orders,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
