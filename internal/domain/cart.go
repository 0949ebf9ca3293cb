package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultStorageKey — ключ, под которым корзина хранится в PersistentStore.
const DefaultStorageKey = "@RocketShoes:cart"

// ProductInfo — неизменяемые поля каталога, которые копируются в позицию корзины.
type ProductInfo struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// StockInfo — снимок остатков на складе. Никогда не кэшируется между операциями.
type StockInfo struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

// LineItem представляет один товар в корзине и запрошенное количество.
type LineItem struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// NewLineItem создаёт позицию корзины из карточки товара.
func NewLineItem(product ProductInfo, amount int) LineItem {
	return LineItem{
		ID:     product.ID,
		Title:  product.Title,
		Price:  product.Price,
		Image:  product.Image,
		Amount: amount,
	}
}

// Cart — упорядоченный список позиций в порядке первого добавления.
type Cart []LineItem

// Find возвращает индекс позиции с productID или -1.
func (c Cart) Find(productID int64) int {
	for i, item := range c {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// Contains сообщает, есть ли товар в корзине.
func (c Cart) Contains(productID int64) bool {
	return c.Find(productID) >= 0
}

// Clone возвращает независимую копию корзины.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// With возвращает новую корзину с добавленной в конец позицией.
func (c Cart) With(item LineItem) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, item)
}

// Without возвращает новую корзину без позиции productID.
func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// WithAmount возвращает новую корзину, где у позиции productID изменено количество.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	out := c.Clone()
	if i := out.Find(productID); i >= 0 {
		out[i].Amount = amount
	}
	return out
}

// Units возвращает суммарное количество единиц товара.
func (c Cart) Units() int {
	var total int
	for _, item := range c {
		total += item.Amount
	}
	return total
}

// Validate проверяет инварианты корзины: amount >= 1 и уникальность id.
func (c Cart) Validate() []error {
	var errs []error

	seen := make(map[int64]struct{}, len(c))
	for _, item := range c {
		if item.Amount < 1 {
			errs = append(errs, fmt.Errorf("%w: product %d", ErrLineItemAmountInvalid, item.ID))
		}
		if _, dup := seen[item.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: product %d", ErrLineItemDuplicate, item.ID))
		}
		seen[item.ID] = struct{}{}
	}

	return errs
}

// MarshalCart сериализует корзину в JSON-массив позиций.
// Пустая корзина всегда кодируется как "[]", а не "null".
func MarshalCart(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cart: %w", err)
	}
	return string(data), nil
}

// UnmarshalCart разбирает сохранённое значение и проверяет инварианты.
func UnmarshalCart(raw string) (Cart, error) {
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	if errs := c.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, errs[0])
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
