package service

import (
	"github.com/ctopbusca/ctop-busca/database"
	"github.com/ctopbusca/ctop-busca/database/model"
	"github.com/ctopbusca/ctop-busca/util/common"
	"github.com/ctopbusca/ctop-busca/util/random"
)

const secretKey = "secret"

var defaultValueMap = map[string]string{
	"lang": "pt-BR",
}

// SettingService reads and writes panel settings in the settings table.
type SettingService struct{}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// GetSecret returns the key that signs session cookies, generating it on
// first use.
func (s *SettingService) GetSecret() ([]byte, error) {
	setting, err := s.getSetting(secretKey)
	if database.IsNotFound(err) {
		secret := random.Seq(32)
		if err := s.saveSetting(secretKey, secret); err != nil {
			return nil, err
		}
		return []byte(secret), nil
	} else if err != nil {
		return nil, err
	}
	return []byte(setting.Value), nil
}

// GetLang is the default panel language for browsers that send none.
func (s *SettingService) GetLang() (string, error) {
	return s.getString("lang")
}

func (s *SettingService) SetLang(lang string) error {
	return s.saveSetting("lang", lang)
}
