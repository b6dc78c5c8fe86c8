// Package geojson encodes detections as a GeoJSON-like FeatureCollection.
//
// Features are not georeferenced: geometry is a placeholder Point(0, 0) and
// the detection lives in properties, in image pixel coordinates:
//
//	{
//	  "type": "Feature",
//	  "id": "<32 hex>",
//	  "geometry": {"type": "Point", "coordinates": [0, 0]},
//	  "properties": {
//	    "bounds_imcoords": [x_min, y_min, x_max, y_max],
//	    "polygon_imcoords": [[x, y], ...],
//	    "detection_score": 0.9,
//	    "feature_types": {"label": 0.9},
//	    "image_id": "<32 hex>"
//	  }
//	}
//
// polygon_imcoords is present only for detections with an outline.
package geojson
