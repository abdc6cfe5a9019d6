// Package menutest serves canned menu API responses for tests.
package menutest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// Payload is a two-category menu: "Starters" (veg/non-veg/unspecified items
// and a varietied soup) and "Drinks".
const Payload = `{
  "responseStatus": {"status": "success", "message": "ok"},
  "body": {"menuitems": {
    "title": "Spice Route",
    "cloudinary_Iconurl": "icons/spice.png",
    "categories": [
      {"_id": "cat-food", "category": "Food", "cloudinary_url": "cats/food.png", "publish": true, "isActive": true, "openTime": "11:00", "closeTime": "23:00"},
      {"_id": "cat-drinks", "category": "Drinks", "cloudinary_url": "https://cdn.example.com/drinks.png", "publish": true, "isActive": true},
      {"_id": "cat-hidden", "category": "Hidden", "cloudinary_url": "", "publish": false, "isActive": true}
    ],
    "subCategories": [
      {"_id": "sub-starters", "subCategory": "Starters", "category_id": "cat-food", "cloudinary_url": "subs/starters.png"},
      {"_id": "sub-soups", "subCategory": "Soups", "category_id": "cat-food", "cloudinary_url": ""},
      {"_id": "sub-juices", "subCategory": "Juices", "category_id": "cat-drinks", "cloudinary_url": ""},
      {"_id": "sub-orphan", "subCategory": "Orphan", "category_id": "cat-missing", "cloudinary_url": ""}
    ],
    "items": [
      {"_id": "it-paneer", "itemName": "Paneer Tikka", "description": "Char-grilled cottage cheese", "price": "220", "type": "veg", "image": "items/paneer.jpg", "subCategory_id": "sub-starters", "publish": true, "varietyArr": [], "chefRecommend": true, "isActive": true},
      {"_id": "it-burger", "itemName": "Veg Burger", "description": "Crispy patty", "price": 150, "type": "Veg", "image": "", "subCategory_id": "sub-starters", "publish": true, "varietyArr": [], "chefRecommend": false, "isActive": true},
      {"_id": "it-wings", "itemName": "Chicken Wings", "description": "Spicy and smoky", "price": "260.50", "type": "non-veg", "image": "//img.example.com/wings.jpg", "video": "videos/wings.mp4", "subCategory_id": "sub-starters", "publish": true, "varietyArr": [], "chefRecommend": false, "isActive": true},
      {"_id": "it-soup", "itemName": "Tomato Soup", "description": "House special", "price": "", "type": "", "image": "", "subCategory_id": "sub-soups", "publish": true,
       "varietyArr": [{"name": "Large", "price": "120", "type": "size"}, {"name": "Small", "price": 90, "type": "size"}, {"name": "Family", "price": "150", "type": "size"}],
       "chefRecommend": false, "isActive": true},
      {"_id": "it-lime", "itemName": "Fresh Lime", "description": "Sweet or salted", "price": "60", "type": "veg", "image": "", "subCategory_id": "sub-juices", "publish": true, "varietyArr": [], "chefRecommend": false, "isActive": false},
      {"_id": "it-draft", "itemName": "Draft Item", "description": "", "price": "10", "type": "veg", "image": "", "subCategory_id": "sub-juices", "publish": false, "varietyArr": [], "chefRecommend": false, "isActive": true},
      {"_id": "it-stray", "itemName": "Stray", "description": "", "price": "10", "type": "veg", "image": "", "subCategory_id": "sub-missing", "publish": true, "varietyArr": [], "chefRecommend": false, "isActive": true}
    ]
  }}
}`

// Server is an httptest server answering GET /menu/{id}.
type Server struct {
	*httptest.Server
	Hits atomic.Int64
}

// NewServer serves body with status for every /menu/ request. The server is
// closed when the test ends.
func NewServer(t *testing.T, status int, body string) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Hits.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/menu/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

// NewBlockingServer holds every request until release is closed.
func NewBlockingServer(t *testing.T, release <-chan struct{}) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(Payload))
	}))
	t.Cleanup(s.Close)
	return s
}
