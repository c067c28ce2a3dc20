// Package handlers demonstrates serving template fragments over HTTP.
//
// The whole page is rendered for full navigations; HTMX-style partial
// refreshes request only a fragment of the same document with a
// compound "document#fragment" name, so the row markup lives in exactly
// one place.
package handlers

import (
	"fmt"

	"github.com/abiiranathan/rex"

	"github.com/abiiranathan/partials"
	"github.com/abiiranathan/partials/engine"
)

// Product is one row of the inventory table.
type Product struct {
	ID       uint
	Name     string
	Quantity int
	Price    float64
}

// Handler holds service dependencies.
type Handler struct {
	Engine *engine.Engine
}

// NewHandler wires an engine over templateDir with the default
// partials → cached → filesystem loader stack.
func NewHandler(templateDir string) *Handler {
	return &Handler{Engine: partials.NewEngine([]string{templateDir})}
}

// listProducts returns the current inventory.
func listProducts() []Product {
	return []Product{
		{ID: 1, Name: "Paracetamol 500mg", Quantity: 120, Price: 0.5},
		{ID: 2, Name: "Amoxicillin 250mg", Quantity: 48, Price: 1.25},
		{ID: 3, Name: "Ibuprofen 400mg", Quantity: 75, Price: 0.8},
	}
}

// render resolves name (possibly compound) and renders it with data.
func (h *Handler) render(name string, data rex.Map) (string, error) {
	tmpl, err := h.Engine.GetTemplate(name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(engine.NewContext(data))
}

// InventoryPage renders the full inventory page, including the rows
// fragment inline at its definition site.
func (h *Handler) InventoryPage() rex.HandlerFunc {
	return func(c *rex.Context) error {
		out, err := h.render("inventory.html", rex.Map{
			"Title":    "Inventory",
			"products": listProducts(),
		})
		if err != nil {
			return err
		}
		return c.HTML(out)
	}
}

// InventoryRows renders only the rows fragment of the inventory page,
// for partial refreshes. The compound name resolves through the same
// cached document the full page uses.
func (h *Handler) InventoryRows() rex.HandlerFunc {
	return func(c *rex.Context) error {
		out, err := h.render("inventory.html#rows", rex.Map{
			"products": listProducts(),
		})
		if err != nil {
			return err
		}
		return c.HTML(out)
	}
}

// ProductRow renders the single-product fragment for one inventory
// entry.
func (h *Handler) ProductRow() rex.HandlerFunc {
	return func(c *rex.Context) error {
		productID := c.ParamUint("product_id")

		var product *Product
		for _, p := range listProducts() {
			if p.ID == uint(productID) {
				product = &p
				break
			}
		}
		if product == nil {
			return fmt.Errorf("product %d not found", productID)
		}

		out, err := h.render("inventory.html#row", rex.Map{
			"product": *product,
		})
		if err != nil {
			return err
		}
		return c.HTML(out)
	}
}
