// Package feed serializa el catálogo como RSS 2.0 con el namespace g: de Google Merchant.
package feed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/application/ports"
)

// NsGoogle namespace de los atributos de producto de Google Merchant.
const NsGoogle = "http://base.google.com/ns/1.0"

var _ ports.FeedEncoder = (*RSSEncoder)(nil)

// RSSEncoder implementa ports.FeedEncoder con etree.
type RSSEncoder struct {
	title       string
	link        string
	description string
	currency    string
}

// NewRSSEncoder construye el encoder. currency es el código ISO 4217 de los precios.
func NewRSSEncoder(title, link, description, currency string) *RSSEncoder {
	return &RSSEncoder{title: title, link: link, description: description, currency: currency}
}

// Encode genera el documento RSS completo.
func (e *RSSEncoder) Encode(items []dto.FeedItem) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	rss.CreateAttr("xmlns:g", NsGoogle)

	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(e.title)
	channel.CreateElement("link").SetText(e.link)
	channel.CreateElement("description").SetText(e.description)

	var last time.Time
	for _, it := range items {
		if it.UpdatedAt.After(last) {
			last = it.UpdatedAt
		}
		item := channel.CreateElement("item")
		item.CreateElement("g:id").SetText(strconv.FormatInt(it.ID, 10))
		item.CreateElement("title").SetText(it.Title)
		item.CreateElement("description").SetText(it.Description)
		item.CreateElement("link").SetText(it.Link)
		if it.Image != "" {
			item.CreateElement("g:image_link").SetText(it.Image)
		}
		item.CreateElement("g:price").SetText(fmt.Sprintf("%s %s", it.Price.StringFixed(2), e.currency))
		item.CreateElement("g:availability").SetText(availability(it.InStock))
		item.CreateElement("g:condition").SetText("new")
		if it.CategoryName != "" {
			item.CreateElement("g:product_type").SetText(it.CategoryName)
		}
	}
	if !last.IsZero() {
		channel.CreateElement("lastBuildDate").SetText(last.UTC().Format(time.RFC1123Z))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("feed: serializar rss: %w", err)
	}
	return out, nil
}

func availability(inStock bool) string {
	if inStock {
		return "in stock"
	}
	return "out of stock"
}
