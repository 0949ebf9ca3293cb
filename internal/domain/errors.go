package domain

import "errors"

var (
	// ErrOutOfStock — запрошенное (или неявное) количество превышает остаток на складе.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrNotInCart — операция адресована позиции, которой нет в корзине.
	ErrNotInCart = errors.New("product not in cart")
	// ErrLookupFailure — запрос к складу или каталогу завершился ошибкой.
	ErrLookupFailure = errors.New("inventory lookup failed")
	// ErrStorage — не удалось записать корзину в PersistentStore.
	ErrStorage = errors.New("cart storage failed")
	// ErrCorruptCart — сохранённое значение не является корректной корзиной.
	ErrCorruptCart = errors.New("stored cart is corrupt")
	// ErrAlreadyInCart — позиция появилась в корзине, пока загружалась карточка товара.
	ErrAlreadyInCart = errors.New("product already in cart")

	// Ошибки валидации позиций.
	ErrLineItemAmountInvalid = errors.New("line item amount must be at least one")
	ErrLineItemDuplicate     = errors.New("duplicate line item")

	// ErrProductNotFound — склад или каталог не знает такого товара.
	ErrProductNotFound = errors.New("product not found")
	// ErrInventoryTemporary — временная ошибка при обращении к складу, можно повторить попытку.
	ErrInventoryTemporary = errors.New("inventory temporary error")
)

// Kind возвращает короткое имя класса ошибки для логов и метрик.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrNotInCart):
		return "not_in_cart"
	case errors.Is(err, ErrAlreadyInCart):
		return "already_in_cart"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrLookupFailure):
		return "lookup"
	default:
		return "internal"
	}
}
