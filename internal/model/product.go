package model

import "time"

// Product представляет товар каталога
// полный CRUD каталога живёт в отдельном сервисе продавца,
// здесь модель нужна для чтения цен
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	OfferPrice  int64     `json:"offer_price"`
	Images      []string  `json:"images"`
	Date        time.Time `json:"date"`
}

// ProductPrice — текущая и акционная цена товара
// в расчёте заказа участвует OfferPrice
type ProductPrice struct {
	Price      int64
	OfferPrice int64
}
