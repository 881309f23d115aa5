package pages

import (
	"net/http"
	"strings"

	"github.com/abgdnv/gocatalog/internal/client"
	"github.com/shopspring/decimal"
)

// productForm holds the raw form values so they can be echoed back when the submission is rejected.
type productForm struct {
	Action      string
	Cancel      string
	Name        string
	Description string
	Price       string
	Category    string
	Message     string
	Errors      map[string]string
}

func formFromProduct(p *client.Product) productForm {
	return productForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromFloat(p.Price).String(),
		Category:    p.Category,
		Errors:      map[string]string{},
	}
}

func formFromRequest(r *http.Request) (productForm, error) {
	f := productForm{Errors: map[string]string{}}
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	f.Name = r.PostForm.Get("name")
	f.Description = r.PostForm.Get("description")
	f.Price = r.PostForm.Get("price")
	f.Category = r.PostForm.Get("category")
	return f, nil
}

// input converts the form into an API payload. A price that is not a number is recorded in f.Errors.
func (f *productForm) input() (client.ProductInput, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		f.Errors["price"] = "must be a number"
		f.Message = "Please correct the errors below."
		return client.ProductInput{}, false
	}
	return client.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Category:    f.Category,
	}, true
}

// reject copies the API's validation errors onto the form.
func (f *productForm) reject(apiErr *client.APIError) {
	for field, msg := range apiErr.ValidationErrors {
		f.Errors[field] = msg
	}
	f.Message = "Please correct the errors below."
}
