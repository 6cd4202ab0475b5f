package monitoring

import "strings"

var funcNameCleaner = strings.NewReplacer("(*", "", "(", "", ")", "", "[...]", "")

// segmentNameOf trims a runtime function name down to pkg.Receiver.Method.
func segmentNameOf(fullFuncName string) string {
	name := fullFuncName
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return funcNameCleaner.Replace(name)
}

// layerFromFile guesses the layer from the directory the caller lives in.
func layerFromFile(file string) string {
	for _, layer := range []string{LayerRepository, LayerService, LayerDelivery} {
		if strings.Contains(file, "/"+layer+"/") {
			return layer
		}
	}
	return LayerUnknown
}
