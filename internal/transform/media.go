package transform

// assetRef extracts the asset reference key from a media field value.
// Values come in two shapes: {"asset": {"_ref": "..."}} and a bare
// {"_ref": "..."} descriptor.
func assetRef(value interface{}) string {
	m, ok := value.(map[string]interface{})
	if !ok {
		return ""
	}
	if asset, ok := m["asset"].(map[string]interface{}); ok {
		m = asset
	}
	ref, _ := m["_ref"].(string)
	return ref
}

// resolveMedia maps media field values onto target media ids through the
// asset identity map. Unresolved assets yield nil, never an error; a
// single-media field receiving multiple values takes the first and warns.
func (t *Transformer) resolveMedia(typeName, fieldName string, value interface{}, multiple bool) interface{} {
	values, isList := value.([]interface{})
	if !isList {
		values = []interface{}{value}
	}

	if multiple {
		var ids []int
		for _, v := range values {
			if id, ok := t.lookupAsset(typeName, fieldName, v); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		return ids
	}

	if isList && len(values) > 1 {
		t.logger.Warnw("Single-media field received multiple values, taking first",
			"type", typeName, "field", fieldName, "values", len(values))
	}
	if len(values) == 0 {
		return nil
	}
	if id, ok := t.lookupAsset(typeName, fieldName, values[0]); ok {
		return id
	}
	return nil
}

// lookupAsset resolves one media value through the asset identity map.
func (t *Transformer) lookupAsset(typeName, fieldName string, value interface{}) (int, bool) {
	ref := assetRef(value)
	if ref == "" {
		t.logger.Warnw("Media value carries no asset reference",
			"type", typeName, "field", fieldName)
		return 0, false
	}
	id, ok := t.state.Asset(ref)
	if !ok {
		t.logger.Warnw("Referenced asset was not migrated, resolving to null",
			"type", typeName, "field", fieldName, "asset", ref)
		return 0, false
	}
	return id, true
}
