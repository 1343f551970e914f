// Package catalog recovers product records from the storefront's typed
// array literal (products.ts). It scans the text with explicit bracket depth
// tracking instead of a parser, so it tolerates comments, trailing commas,
// optional fields, and aspect maps whose keys vary per product.
package catalog

import "shopsmart/internal/model"

// Extractor pulls products out of a source file. The zero value reads the
// array declared as DefaultArrayName.
type Extractor struct {
	ArrayName string
}

// Result is the outcome of one extraction.
type Result struct {
	Products []model.Product
	// Items counts every object literal found, kept or not.
	Items int
	// DroppedItems holds the zero-based positions of items without an id.
	DroppedItems []int
	// DroppedAspects counts aspect entries whose value was not an integer.
	DroppedAspects int
}

// Extract runs the extractor with default settings.
func Extract(src string) (Result, error) {
	return Extractor{}.Extract(src)
}

// Extract returns the products of src in source order. When the array cannot
// be located the error is a *SourceFormatError and Products is empty.
func (e Extractor) Extract(src string) (Result, error) {
	name := e.ArrayName
	if name == "" {
		name = DefaultArrayName
	}

	body, err := locateArray(src, name)
	if err != nil {
		return Result{Products: []model.Product{}}, err
	}

	items := segmentItems(body)
	res := Result{
		Products: make([]model.Product, 0, len(items)),
		Items:    len(items),
	}
	for pos, item := range items {
		p, dropped, ok := assemble(item)
		if !ok {
			res.DroppedItems = append(res.DroppedItems, pos)
			continue
		}
		res.DroppedAspects += dropped
		res.Products = append(res.Products, p)
	}
	return res, nil
}

// assemble builds a product from one item body. Items without an id are
// rejected.
func assemble(item string) (model.Product, int, bool) {
	id := stringField(item, "id")
	if id == "" {
		return model.Product{}, 0, false
	}
	sentiment, dropped := sentimentField(item)
	return model.Product{
		ID:              id,
		Name:            stringField(item, "name"),
		Description:     stringField(item, "description"),
		LongDescription: stringField(item, "longDescription"),
		Price:           numberField(item, "price"),
		Image:           stringField(item, "image"),
		Category:        stringField(item, "category"),
		DataAIHint:      stringField(item, "dataAiHint"),
		Tags:            listField(item, "tags"),
		Sentiment:       sentiment,
	}, dropped, true
}
