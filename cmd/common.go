package cmd

import (
	"github.com/deploymenttheory/go-a2fs/internal/disk"
	"github.com/deploymenttheory/go-a2fs/internal/services"
	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/spf13/viper"
)

func loadConfig() (*disk.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	cfg, err := disk.LoadConfig()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "failed to load configuration", err)
	}
	return cfg, nil
}

// openVolume loads the image at path and opens the filesystem on it
func openVolume(path string) (*services.VolumeService, *disk.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log := appCtx.Logger()
	img, err := disk.LoadImage(path, log)
	if err != nil {
		return nil, nil, app.ClassifyError("failed to load image "+path, err)
	}
	if !img.Detection.Confident {
		log.V(1).Info("filesystem detection was not conclusive", "method", string(img.Detection.Method))
	}

	vol, err := services.OpenVolume(img, cfg, log)
	if err != nil {
		return nil, nil, app.ClassifyError("failed to open volume in "+path, err)
	}
	return vol, cfg, nil
}
