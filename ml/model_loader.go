package ml

import (
	"errors"
)

func LoadModel(modelType, path string) (Regressor, error) {
	switch modelType {
	case "forest":
		model := &Forest{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}
