package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for product documents.
const DefaultIndexName = "products"

// buildIndexMapping returns the full JSON mapping for the products index.
// The folding analyzer lowercases and strips diacritics so queries match
// accented product names. name carries a raw keyword subfield for exact
// sorts and wildcard matching, and a completion subfield for autocomplete.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "folding": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "suggest": { "type": "completion", "analyzer": "folding" } } },
      "description":    { "type": "text", "analyzer": "folding" },
      "price":          { "type": "double" },
      "originalPrice":  { "type": "double" },
      "category":       { "properties": { "id": { "type": "keyword" }, "name": { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword" } } } } },
      "brand":          { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword" } } },
      "tags":           { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword" } } },
      "searchKeywords": { "type": "text", "analyzer": "folding" },
      "stock":          { "type": "integer" },
      "isActive":       { "type": "boolean" },
      "featured":       { "type": "boolean" },
      "views":          { "type": "long" },
      "ratings":        { "properties": { "average": { "type": "float" }, "count": { "type": "integer" } } },
      "discount":       { "properties": { "percentage": { "type": "integer" }, "isActive": { "type": "boolean" }, "startDate": { "type": "date" }, "endDate": { "type": "date" } } },
      "promotion":      { "properties": { "type": { "type": "keyword" }, "label": { "type": "keyword" }, "percentage": { "type": "integer" }, "isActive": { "type": "boolean" }, "priority": { "type": "integer" }, "startDate": { "type": "date" }, "endDate": { "type": "date" } } },
      "sku":            { "type": "keyword" },
      "createdAt":      { "type": "date" },
      "updatedAt":      { "type": "date" }
    }
  }
}`
}
