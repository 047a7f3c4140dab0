package storefront

import (
	"context"
	"fmt"

	"github.com/mirrorops/storesync-worker/internal/models"
	"github.com/mirrorops/storesync-worker/internal/service"
)

const productsQuery = `
query Products($first: Int!, $after: String, $updatedAfter: DateTime) {
  products(first: $first, after: $after, updatedAfter: $updatedAfter) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      title
      vendor
      productType
      handle
      status
      tags
      description
      updatedAt
      images { id src alt position }
      variants { id title sku price compareAtPrice inventoryQuantity position }
    }
  }
}`

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"productType"`
	Handle      string `json:"handle"`
	Status      string `json:"status"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updatedAt"`
	Images      []struct {
		ID       string `json:"id"`
		Src      string `json:"src"`
		Alt      string `json:"alt"`
		Position int    `json:"position"`
	} `json:"images"`
	Variants []struct {
		ID                string   `json:"id"`
		Title             string   `json:"title"`
		SKU               string   `json:"sku"`
		Price             float64  `json:"price"`
		CompareAtPrice    *float64 `json:"compareAtPrice"`
		InventoryQuantity int      `json:"inventoryQuantity"`
		Position          int      `json:"position"`
	} `json:"variants"`
}

type productsData struct {
	Products struct {
		PageInfo pageInfo      `json:"pageInfo"`
		Nodes    []productNode `json:"nodes"`
	} `json:"products"`
}

// FetchProducts fetches one page of catalog items for a shop
func (c *Client) FetchProducts(ctx context.Context, shop *models.Shop, filter service.FeedFilter, cursor string, pageSize int) (*service.FeedPage[models.Product], error) {
	var data productsData
	if err := c.execute(ctx, shop, productsQuery, buildVariables(filter, cursor, pageSize), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	items := make([]models.Product, 0, len(data.Products.Nodes))
	for _, node := range data.Products.Nodes {
		product, err := mapProduct(shop.ID, node)
		if err != nil {
			return nil, err
		}
		items = append(items, product)
	}

	return &service.FeedPage[models.Product]{
		Items:      items,
		NextCursor: data.Products.PageInfo.EndCursor,
		HasMore:    data.Products.PageInfo.HasNextPage,
	}, nil
}

func mapProduct(shopID string, node productNode) (models.Product, error) {
	updatedAt, err := parseTime(node.UpdatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s: %w", node.ID, err)
	}

	product := models.Product{
		ID:          node.ID,
		ShopID:      shopID,
		Title:       node.Title,
		Vendor:      node.Vendor,
		ProductType: node.ProductType,
		Handle:      node.Handle,
		Status:      node.Status,
		Tags:        node.Tags,
		Description: node.Description,
		UpdatedAt:   updatedAt,
	}

	for _, img := range node.Images {
		product.Images = append(product.Images, models.ProductImage{
			ID:        img.ID,
			ShopID:    shopID,
			ProductID: node.ID,
			Src:       img.Src,
			Alt:       img.Alt,
			Position:  img.Position,
		})
	}
	for _, v := range node.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:                v.ID,
			ShopID:            shopID,
			ProductID:         node.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             v.Price,
			CompareAtPrice:    v.CompareAtPrice,
			InventoryQuantity: v.InventoryQuantity,
			Position:          v.Position,
		})
	}

	return product, nil
}
