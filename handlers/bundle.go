package handlers

// HandlerBundle groups the handlers routes are registered from.
type HandlerBundle struct {
	Chat    *ChatHandler
	Catalog *CatalogHandler
	Orders  *OrderHandler
	Admin   *AdminHandler
}
