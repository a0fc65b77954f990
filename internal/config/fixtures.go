package config

import (
	"fmt"

	"github.com/spf13/viper"

	"shipment-parser/internal/parser"
)

// LoadFixtures reads reference fixtures from a standalone file. The file
// holds a top-level "fixtures" list in any format Viper understands.
//
//	fixtures:
//	  - shipment_id: "7314270806"
//	    expected_count: 3
//	    product_hint: 现代简约ins陶瓷猫头鹰摆件
//	    records:
//	      - courier: 德邦快递
//	        tracking_number: DPK364726554807
//	        weight: 3.89KG
func LoadFixtures(path string) ([]parser.ReferenceFixture, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read fixtures file %s: %w", path, err)
	}

	var fixtures []parser.ReferenceFixture
	if err := v.UnmarshalKey("fixtures", &fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures file %s: %w", path, err)
	}
	return fixtures, nil
}
