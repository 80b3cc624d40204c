package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/ishu34311-maker/Sales/internal/es"
	"github.com/ishu34311-maker/Sales/internal/hash"
	"github.com/ishu34311-maker/Sales/internal/mykafka"
	"github.com/ishu34311-maker/Sales/internal/store"
)

type AdminHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	user, err := h.Store.AddUser(c.Request().Context(), req.Username, passwordHash)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return c.JSON(http.StatusConflict, Response{
				Status:  "warning",
				Message: "User already exists!",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, "user_events", user.Username, map[string]any{
		"type":     "user_created",
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, Response{
		Status:  "ok",
		Message: "User '" + user.Username + "' created successfully!",
	})
}

// AddProduct inserts unconditionally, duplicate names and zero prices are
// allowed. Only a negative price is rejected at this edge.
func (h *AdminHandler) AddProduct(c echo.Context) error {
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	ctx := c.Request().Context()

	prod, err := h.Store.AddProduct(ctx, req.Name, req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if err := es.IndexProduct(ctx, h.ES, h.Index, prod); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}

	publish(c, h.Producer, "product_events", prod.Name, map[string]any{
		"type":      "product_added",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
	})

	menu, err := h.Store.ListProducts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "ok",
		"message": "Product '" + prod.Name + "' added successfully!",
		"product": prod,
		"menu":    menu,
	})
}

type dailyTotal struct {
	Date     string             `json:"date"`
	Total    float64            `json:"total"`
	Products map[string]float64 `json:"products"`
}

// SalesReport flattens every order's cart into per-line-item rows and sums
// them per date and product, the data behind the daily sales chart.
func (h *AdminHandler) SalesReport(c echo.Context) error {
	rows, err := h.Store.SalesRows(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if len(rows) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "No sales data yet.",
			"rows":    []store.SalesRow{},
			"daily":   []dailyTotal{},
		})
	}

	byDate := map[string]*dailyTotal{}
	for _, row := range rows {
		d, ok := byDate[row.Date]
		if !ok {
			d = &dailyTotal{Date: row.Date, Products: map[string]float64{}}
			byDate[row.Date] = d
		}
		d.Total += row.Price
		d.Products[row.Product] += row.Price
	}

	daily := make([]dailyTotal, 0, len(byDate))
	for _, d := range byDate {
		daily = append(daily, *d)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	return c.JSON(http.StatusOK, echo.Map{
		"rows":  rows,
		"daily": daily,
	})
}
