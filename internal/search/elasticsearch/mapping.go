package elasticsearch

// indexMapping stores documents in storefront shape. Only name, category
// and createdAt are indexed; the rest is carried in _source.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "dynamic": false,
    "properties": {
      "id":         { "type": "keyword" },
      "name":       { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "slug":       { "type": "keyword" },
      "category":   { "type": "keyword" },
      "finalPrice": { "type": "scaled_float", "scaling_factor": 100 },
      "createdAt":  { "type": "date" }
    }
  }
}`
